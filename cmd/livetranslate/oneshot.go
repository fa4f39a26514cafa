package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"livetranslate/internal/bootstrap"
	"livetranslate/internal/config"
	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

func newTranslateCmd(state *cliState) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text once",
		Example: `  livetranslate translate --to en-US "Hola amigo"
  livetranslate translate --from fr --to de-DE "Bonjour tout le monde"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if to == "" {
				to = cfg.Session.UserLanguage
			}
			if _, ok := domain.LookupLanguage(to); !ok {
				return fmt.Errorf("unsupported language %q (see 'livetranslate languages')", to)
			}

			text := strings.Join(args, " ")
			state.logger.Debug("translating", "translator", cfg.Translator, "from", from, "to", to)
			translated, err := bootstrap.NewLanguageModel(cfg).Translate(cmd.Context(), ports.TranslationRequest{
				Text:       text,
				SourceLang: from,
				TargetLang: to,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), translated)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source language hint")
	cmd.Flags().StringVar(&to, "to", "", "target language (default LIVETRANSLATE_USER_LANGUAGE)")
	return cmd
}

func newIdentifyCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:     "identify <lyrics>",
		Short:   "Guess a song from lyrics",
		Example: `  livetranslate identify "is this the real life, is this just fantasy"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			state.logger.Debug("identifying song", "translator", cfg.Translator)
			song, err := bootstrap.NewLanguageModel(cfg).Identify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if song == "" {
				return errors.New("no song identified")
			}
			fmt.Fprintln(cmd.OutOrStdout(), song)
			return nil
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported listener languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME")
			for _, lang := range domain.SupportedLanguages {
				fmt.Fprintf(w, "%s\t%s\n", lang.Code, lang.Name)
			}
			return w.Flush()
		},
	}
}
