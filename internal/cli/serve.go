package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/finpal-backend/internal/api"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/config"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

func newServeCommand(a *app) *cobra.Command {
	flags := &ServeFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Port > 0 {
				a.cfg.Server.Port = flags.Port
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return RunServe(a.cfg, store, a.logger)
		},
	}
	cmd.Flags().IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	return cmd
}

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, store storage.Repository, logger *slog.Logger) error {
	server := api.NewServer(api.ConfigFrom(cfg), store, logger)

	// Handle graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
