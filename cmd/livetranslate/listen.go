package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"livetranslate/internal/bootstrap"
	"livetranslate/internal/domain"
)

func newListenCmd(state *cliState) *cobra.Command {
	var (
		language    string
		multi       bool
		stream      string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen to the microphone and speak translations",
		Long: `Listen to the microphone and speak translations.

Runs until interrupted. With --stream, an audio stream plays in the
background and is lowered while people talk.

Examples:
  livetranslate listen --language es-ES
  livetranslate listen --multi --stream https://radio.example/live.mp3 --metrics-addr :9464`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink := newConsoleSink(cmd.OutOrStdout())
			services, err := bootstrap.Build(sink, state.logger)
			if err != nil {
				return err
			}
			controller := services.Controller
			defer controller.Close()

			if language != "" {
				if err := controller.SetUserLanguage(language); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("multi") {
				if err := controller.SetMultiParticipant(multi); err != nil {
					return err
				}
			}

			if metricsAddr == "" {
				metricsAddr = services.Config.Metrics.Addr
			}
			if metricsAddr != "" {
				server := serveMetrics(metricsAddr, services.Metrics.Handler(), state)
				defer shutdownServer(server)
			}

			if stream == "" {
				stream = services.Config.Playback.StreamURL
			}
			if stream != "" {
				if err := services.Stream.Play(ctx, stream); err != nil {
					return fmt.Errorf("failed to play %s: %w", stream, err)
				}
				defer services.Stream.Stop()
			}

			go controller.Run(ctx)

			if err := controller.Enable(ctx); err != nil {
				if errors.Is(err, domain.ErrCapabilityUnavailable) {
					return fmt.Errorf("speech recognition unavailable: set DEEPGRAM_API_KEY")
				}
				return err
			}

			<-ctx.Done()
			state.logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "your language (default LIVETRANSLATE_USER_LANGUAGE)")
	cmd.Flags().BoolVar(&multi, "multi", false, "group conversation mode")
	cmd.Flags().StringVar(&stream, "stream", "", "audio stream to play in the background")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func serveMetrics(addr string, handler http.Handler, state *cliState) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			state.logger.Warn("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	state.logger.Info("serving metrics", "addr", addr)
	return server
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
