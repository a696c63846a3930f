package cmd

import (
	"os"

	"github.com/remedialportal/console/internal/config"
	"github.com/remedialportal/console/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "remedial",
	Short: "Remedial Portal admin CLI",
	Long:  `remedial is the back-office console for the student remediation program`,
}

// Execute runs the CLI with the loaded configuration.
func Execute(c *config.Config) {
	cfg = c
	if err := rootCmd.Execute(); err != nil {
		logger.Error("CLI error", "error", err)
		os.Exit(1)
	}
}
