package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/github"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/dshills/reviewloop/internal/improve"
	"github.com/spf13/cobra"
)

var (
	flagImprovePR   int
	flagImproveMock bool
)

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Run the self-improvement cycle",
	Long: "Aggregate review history and adaptive metrics, generate an improvement\n" +
		"plan and quality report (LLM with heuristic fallback), and optionally post\n" +
		"the plan summary on a pull request.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		store := history.NewStore(cfg.HistoryPath, cfg.MaxHistory)
		log := adaptive.OpenLog(cfg.AdaptiveLog, cfg.MaxAdaptiveLog)

		cycle := &improve.Cycle{Dir: "."}
		if !flagImproveMock {
			cycle.Provider = buildProvider(cfg)
		}

		ctx := context.Background()
		payload, err := cycle.Run(ctx, store.Load(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] improvement plan written to %s\n", improve.DefaultPlanPath)

		if flagImprovePR > 0 && cfg.PostComment {
			postImprovementComment(ctx, flagImprovePR, payload)
		}
		return nil
	},
}

// postImprovementComment is best-effort: a failure never fails the run.
func postImprovementComment(ctx context.Context, pr int, payload improve.PlanPayload) {
	owner, repo, err := github.DetectRepo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] detecting repository: %v\n", err)
		return
	}
	client, err := github.NewClient(ctx, owner, repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] %v\n", err)
		return
	}
	body := "### Self-Improvement Plan\n\n" + payload.Summary()
	if err := client.CreateIssueComment(ctx, pr, body); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] posting improvement comment: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "[INFO] posted improvement plan on PR #%d\n", pr)
}

func init() {
	improveCmd.Flags().IntVar(&flagImprovePR, "pr", 0, "Post the plan summary on this PR number")
	improveCmd.Flags().BoolVar(&flagImproveMock, "mock", false, "Skip the provider and use the heuristic plan")
	improveCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, ollama, mock)")
	improveCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
}
