package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/spf13/cobra"
)

const selfEvalPath = "self_eval_metrics.json"

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Update adaptive weights from the review history",
	Long: "Run the full learning pass: category weights, reward matrix, continuous\n" +
		"learning weights, confidence calibration, and local/network weight fusion.\n" +
		"Subcommands run individual phases.",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, ok := loadEntries()
		if !ok {
			return nil
		}
		if !runWeights(entries) || !runRewards(entries) {
			return nil
		}
		selfEval := loadSelfEval(selfEvalPath)
		trend := adaptive.Analyze(entries).TrendSummary
		var highlights []string
		if trend != "" {
			highlights = []string{trend}
		}
		if _, err := adaptive.RunLearning(".", entries, selfEval, highlights); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintln(os.Stderr, "[INFO] learning weights updated")
		if !runConfidence(entries) || !runFusion() {
			return nil
		}
		return nil
	},
}

var learnWeightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Recompute category weights from recent history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if entries, ok := loadEntries(); ok {
			runWeights(entries)
		}
		return nil
	},
}

var learnRewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Compute the reward matrix and tune the weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		if entries, ok := loadEntries(); ok {
			runRewards(entries)
		}
		return nil
	},
}

var learnConfidenceCmd = &cobra.Command{
	Use:   "confidence",
	Short: "Calibrate reviewer confidence from priority scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		if entries, ok := loadEntries(); ok {
			runConfidence(entries)
		}
		return nil
	},
}

var learnFuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse local weights with the network weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		runFusion()
		return nil
	},
}

func loadEntries() ([]history.Entry, bool) {
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil, false
	}
	store := history.NewStore(cfg.HistoryPath, cfg.MaxHistory)
	return store.Load(), true
}

func runWeights(entries []history.Entry) bool {
	w := adaptive.ComputeWeights(entries)
	if err := adaptive.SaveWeights(adaptive.DefaultWeightsPath, w); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return false
	}
	fmt.Fprintf(os.Stderr, "[INFO] category weights saved to %s\n", adaptive.DefaultWeightsPath)
	return true
}

func runRewards(entries []history.Entry) bool {
	selfEval := loadSelfEval(selfEvalPath)
	var selfScore *float64
	if v, ok := selfEval["ai_self_score"]; ok {
		selfScore = &v
	}
	rewards := adaptive.ComputeRewards(entries, selfScore)
	if err := writeArtifact(adaptive.DefaultRewardPath, rewards); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return false
	}

	adjusted := adaptive.AdjustWeights(adaptive.LoadWeights(adaptive.DefaultWeightsPath), rewards)
	if err := adaptive.SaveWeights(adaptive.DefaultWeightsPath, adjusted); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return false
	}
	fmt.Fprintf(os.Stderr, "[INFO] reward matrix saved to %s\n", adaptive.DefaultRewardPath)
	return true
}

func runConfidence(entries []history.Entry) bool {
	c := adaptive.Calibrate(history.Scores(entries))
	if err := adaptive.SaveConfidence(adaptive.DefaultConfidencePath, c); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return false
	}
	fmt.Fprintf(os.Stderr, "[INFO] calibrated confidence: %.3f\n", c.Calibrated)
	return true
}

func runFusion() bool {
	fused, err := adaptive.RunFusion(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return false
	}
	fmt.Fprintf(os.Stderr, "[INFO] fused %d weight keys\n", len(fused))
	return true
}

// loadSelfEval reads optional self-evaluation metrics. Missing or
// malformed files yield nil; only numeric fields are kept.
func loadSelfEval(path string) map[string]float64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := map[string]float64{}
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func writeArtifact(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	learnCmd.AddCommand(learnWeightsCmd)
	learnCmd.AddCommand(learnRewardsCmd)
	learnCmd.AddCommand(learnConfidenceCmd)
	learnCmd.AddCommand(learnFuseCmd)
}
