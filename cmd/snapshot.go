package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-pulse/internal/config"
	"github.com/naka-gawa/repo-pulse/internal/gateway"
	"github.com/naka-gawa/repo-pulse/internal/logger"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetches one full statistics snapshot and outputs it as JSON",
	Long:  `Fetches a complete statistics snapshot for the configured repository, bypassing the cache, and outputs the result in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger.SetVerbose(verbose)
		confPath, _ := cmd.InheritedFlags().GetString("config")

		cfg, err := config.Load(confPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		if owner != "" {
			cfg.Owner = owner
		}
		if repo != "" {
			cfg.Repo = repo
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg, logger.WithComponent("gateway"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		snapshot, err := githubGateway.FetchAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch snapshot: %v\n", err)
			os.Exit(1)
		}

		jsonData, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal snapshot to JSON: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	snapshotCmd.Flags().String("owner", "", "Repository owner (overrides config)")
	snapshotCmd.Flags().String("repo", "", "Repository name (overrides config)")
	rootCmd.AddCommand(snapshotCmd)
}
