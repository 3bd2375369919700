package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/grompt/llm"
	"github.com/c360studio/grompt/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive form UI",
		Long: `Serve starts an HTTP server with the Grompt form UI: a Basic tab
with a single prompt field and an Advanced tab collecting the eight
prompt-canvas fields, plus shared model/temperature/max-tokens
selectors. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(logLevel)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			// Warn early so a missing key is visible before the first request.
			if envName, ok := llm.CheckCredential(cfg.Model.Provider); !ok {
				slog.Warn("Credential not set; optimize requests will fail", "env", envName)
			}

			return serve(cfg.Server.Addr, server.New(newOptimizer(cfg), cfg.Model.Provider, slog.Default()))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, \":8080\")")

	return cmd
}

func serve(addr string, srv *server.Server) error {
	mux := http.NewServeMux()
	srv.RegisterHandlers(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Grompt ready", "version", Version, "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("Grompt shutdown complete")
	return nil
}
