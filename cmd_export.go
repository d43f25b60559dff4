package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vehicle_log/internal/export"
	"vehicle_log/internal/report"
)

var (
	exportDate string
	exportDir  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records for a date to a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDate == "" {
			return errors.New("please select a date (--date YYYY-MM-DD)")
		}
		if _, err := time.Parse(time.DateOnly, exportDate); err != nil {
			return fmt.Errorf("invalid date %q: %w", exportDate, err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}

		repo, err := report.NewRepository(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer repo.Close()

		records, err := repo.ByDate(cmd.Context(), exportDate)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no records for %s", exportDate)
		}

		path, err := export.WriteFile(dir, report.GroupByCity(records))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "entry date to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (default: export.dir from config)")
}
