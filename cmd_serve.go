package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vehicle_log/internal/logging"
	"vehicle_log/internal/report"
	"vehicle_log/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log.Verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		repo, err := report.NewRepository(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer repo.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("Report server starting",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("database", cfg.Database.Path))

		return server.NewServer(cfg, repo, logger).Run(ctx)
	},
}
