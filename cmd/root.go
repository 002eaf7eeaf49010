// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repo-pulse",
	Short: "A cached, continuously-refreshed view of GitHub repository statistics.",
	Long: `repo-pulse is the data layer behind a live repository metrics dashboard.
It fetches statistics from the GitHub API, reconciles them against a local
persistent cache with a bounded TTL, and keeps the view refreshed in the
background while minimizing calls against the rate-limited API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags are available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("config", "", "Directory containing an optional config.yaml")
}
