package cli

import (
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/hub"
	"github.com/dshills/reviewloop/internal/network"
	"github.com/dshills/reviewloop/internal/report"
	"github.com/spf13/cobra"
)

var flagPushMessage string

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Aggregate and share adaptive knowledge across repositories",
}

var networkInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the global knowledge directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := network.InitCore("."); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] global knowledge core ready in %s\n", network.GlobalDir)
		return nil
	},
}

var networkAggregateCmd = &cobra.Command{
	Use:   "aggregate [root]",
	Short: "Scan for learning artifacts and merge them into the global summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		summary, err := network.Run(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] aggregated %d sources into %s\n",
			summary.AggregatedMetrics.NumSources, network.GlobalDir)
		return nil
	},
}

var networkSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Exchange weights with the shared hub repository",
}

var networkSyncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch the network weights from the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok := hubSync()
		if !ok {
			return nil
		}
		path, err := s.Pull(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if path == "" {
			fmt.Fprintln(os.Stderr, "[INFO] hub carries no network weights yet")
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] pulled network weights to %s\n", path)
		return nil
	},
}

var networkSyncPushCmd = &cobra.Command{
	Use:   "push [files...]",
	Short: "Publish weights and report artifacts to the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok := hubSync()
		if !ok {
			return nil
		}
		artifacts := args
		if len(artifacts) == 0 {
			artifacts = []string{
				adaptive.DefaultNetworkWeightsPath,
				report.DefaultEvolutionBadgePath,
				report.DefaultFinalReportPath,
				report.DefaultRecruiterMDPath,
			}
		}
		if err := s.Push(artifacts, flagPushMessage); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintln(os.Stderr, "[INFO] pushed artifacts to the hub")
		return nil
	},
}

// hubSync builds the hub client from config and environment. The token
// stays out of every log line.
func hubSync() (*hub.Sync, bool) {
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil, false
	}
	if cfg.Hub.RepoURL == "" {
		fmt.Fprintln(os.Stderr, "Error: no hub repository configured (set hub.repoUrl or NETWORK_HUB_REPO)")
		exitCode = ExitUsageError
		return nil, false
	}
	token := os.Getenv("HUB_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	return hub.New(cfg.Hub.RepoURL, cfg.Hub.Branch, token), true
}

func init() {
	networkSyncCmd.AddCommand(networkSyncPullCmd)
	networkSyncCmd.AddCommand(networkSyncPushCmd)
	networkCmd.AddCommand(networkInitCmd)
	networkCmd.AddCommand(networkAggregateCmd)
	networkCmd.AddCommand(networkSyncCmd)

	networkSyncPushCmd.Flags().StringVar(&flagPushMessage, "message", "Update shared adaptive knowledge", "Commit message for the hub push")
}
