package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"livetranslate/internal/config"
)

type cliState struct {
	logLevel string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:   "livetranslate",
		Short: "Live conversational translation",
		Long: `livetranslate - listen for foreign speech and speak it back in your language.

Speech in your own language lowers the music and shows a reminder; speech in
any other language is translated and read aloud.

Environment:
  DEEPGRAM_API_KEY            speech recognition and synthesis
  GEMINI_API_KEY              translation with Gemini (default)
  OPENAI_API_KEY              translation with OpenAI (LIVETRANSLATE_TRANSLATOR=openai)
  LIVETRANSLATE_USER_LANGUAGE your language, e.g. en-US`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := config.ParseLevel(state.logLevel)
			state.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(state.logger)
		},
	}

	root.PersistentFlags().StringVar(&state.logLevel, "log-level", os.Getenv("LIVETRANSLATE_LOG_LEVEL"), "log level (debug, info, warn, error)")

	root.AddCommand(
		newListenCmd(state),
		newTranslateCmd(state),
		newIdentifyCmd(state),
		newLanguagesCmd(),
	)
	return root
}
