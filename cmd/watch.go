package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-pulse/internal/cache"
	"github.com/naka-gawa/repo-pulse/internal/config"
	"github.com/naka-gawa/repo-pulse/internal/domain"
	"github.com/naka-gawa/repo-pulse/internal/gateway"
	"github.com/naka-gawa/repo-pulse/internal/logger"
	"github.com/naka-gawa/repo-pulse/internal/scheduler"
	"github.com/naka-gawa/repo-pulse/internal/usecase"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Runs the cached data layer and prints the dashboard state periodically",
	Long: `Starts the synchronization facade: serves cached statistics while fresh,
refreshes them in the background on the TTL schedule, and prints the
current dashboard state as JSON lines until interrupted. SIGHUP requests
a manual refresh, subject to the refresh cooldown.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger.SetVerbose(verbose)
		confPath, _ := cmd.InheritedFlags().GetString("config")
		printEvery, _ := cmd.Flags().GetDuration("print-interval")

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

		store := cache.NewStore[domain.StatsSnapshot](cfg.CacheDir, "stats", logger.WithComponent("cache"))
		syncer := usecase.NewSyncer(
			githubGateway,
			store,
			scheduler.RealClock{},
			cfg.StatsTTL,
			cfg.RefreshCooldown,
			logger.WithComponent("syncer"),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		syncer.Start(ctx)

		refresh := make(chan os.Signal, 1)
		signal.Notify(refresh, syscall.SIGHUP)
		defer signal.Stop(refresh)

		ticker := time.NewTicker(printEvery)
		defer ticker.Stop()

		printState(syncer.State())
		for {
			select {
			case <-ctx.Done():
				return
			case <-refresh:
				if !syncer.ForceRefresh() {
					logger.WithComponent("watch").Info("manual refresh rejected by cooldown")
				}
			case <-ticker.C:
				printState(syncer.State())
			}
		}
	},
}

func printState(state usecase.FacadeState) {
	jsonData, err := json.Marshal(state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal state to JSON: %v\n", err)
		return
	}
	fmt.Println(string(jsonData))
}

func init() {
	watchCmd.Flags().Duration("print-interval", 5*time.Second, "How often to print the current state")
	rootCmd.AddCommand(watchCmd)
}
