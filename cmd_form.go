package main

import (
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vehicle_log/internal"
	"vehicle_log/internal/client"
	"vehicle_log/internal/logging"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Open the data-entry form",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForm()
	},
}

func runForm() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFile(cfg.Log.File, cfg.Log.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	backend := client.New(cfg.Backend.URL,
		client.WithLogger(logger),
		client.WithHTTPClient(newHTTPClient(cfg.Backend.Timeout)),
		client.WithJournalSize(cfg.Backend.JournalSize),
	)
	// let pending auto-saves land before exiting
	defer backend.Wait()

	m := internal.NewModel(internal.Options{
		Cities:    cfg.Form.Cities,
		ExportDir: cfg.Export.Dir,
		Backend:   backend,
		Logger:    logger,
	})

	logger.Info("Form started", zap.String("backend", cfg.Backend.URL))

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running form: %w", err)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
