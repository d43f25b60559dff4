package main

import (
	"github.com/spf13/cobra"

	"vehicle_log/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vehiclelog",
	Short: "Log vehicle entry/exit records per city",
	Long: `vehiclelog records vehicles entering and leaving the workshop, grouped by
city, submits them to the report server and exports them as a spreadsheet.

Run without arguments to open the data-entry form.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForm()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: vehiclelog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(formCmd, serveCmd, exportCmd, initConfigCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Verbose = true
	}
	return cfg, nil
}
