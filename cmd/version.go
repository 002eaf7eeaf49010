package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-pulse/internal/cache"
	"github.com/naka-gawa/repo-pulse/internal/config"
	"github.com/naka-gawa/repo-pulse/internal/gateway"
	"github.com/naka-gawa/repo-pulse/internal/logger"
	"github.com/naka-gawa/repo-pulse/internal/scheduler"
	"github.com/naka-gawa/repo-pulse/internal/usecase"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows the latest release version of the configured repository",
	Long:  `Resolves the latest release tag through the 24-hour version cache and prints it with its provenance ("github" or "cache").`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger.SetVerbose(verbose)
		confPath, _ := cmd.InheritedFlags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := config.Load(confPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg, logger.WithComponent("gateway"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		store := cache.NewStore[string](cfg.CacheDir, "version", logger.WithComponent("cache"))
		checker := usecase.NewVersionChecker(
			githubGateway,
			store,
			scheduler.RealClock{},
			cfg.VersionTTL,
			cfg.RefreshCooldown,
			logger.WithComponent("version"),
		)

		var info usecase.VersionInfo
		if force {
			info, _, err = checker.Refresh(ctx)
		} else {
			info, err = checker.Latest(ctx)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve latest version: %v\n", err)
			os.Exit(1)
		}

		jsonData, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal version info to JSON: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	versionCmd.Flags().Bool("force", false, "Bypass the TTL (still subject to the refresh cooldown)")
	rootCmd.AddCommand(versionCmd)
}
