package cli

import (
	"os"

	"github.com/ksyq12/wpstack/internal/logger"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wpstack",
	Short: "WordPress site provisioning CLI",
	Long: `wpstack provisions self-hosted WordPress sites with SSL on Linux.

It installs Docker and Certbot for the detected distribution, generates a
per-site Docker Compose environment (WordPress, MariaDB, phpMyAdmin),
obtains a Let's Encrypt certificate, and schedules weekly renewal.`,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}
