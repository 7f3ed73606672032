package main

import (
	"os"

	"github.com/spf13/cobra"

	"revenueqa/internal/cli"
	"revenueqa/internal/config"
	"revenueqa/internal/log"
)

var (
	logger  *log.Logger
	appCfg  *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "revenueqa-cli",
	Short: "Ask revenue questions and manage the revenue table from the terminal",
	Long: `revenueqa-cli answers natural-language questions about the revenue table,
imports spreadsheets into the SQLite store and lists past imports.

Configuration comes from the same environment variables (and .env file) as
the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		if verbose {
			os.Setenv("LOG_LEVEL", "debug")
		}
		logger = cli.SetupLogger()
		appCfg = config.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
