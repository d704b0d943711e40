package cmd

import (
	"os"

	"github.com/dailydollars/dailydollars/internal/config"
	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "dailydollars",
	Short: "Daily Dollars budgeting server",
	Long:  "Daily Dollars turns each pay period into a daily spending allowance and tracks the running slush.",
	RunE:  runServe,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "./config/application.yaml", "Path to the YAML config file")
}

func loadConfig() (config.Application, error) {
	return config.Load(flagConfig)
}
