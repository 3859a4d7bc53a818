package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/dashboard"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/dshills/reviewloop/internal/report"
	"github.com/dshills/reviewloop/internal/review"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate summaries, dashboards, badges, and reports",
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Build review_summary.json and review_summary.md from the latest review",
	RunE: func(cmd *cobra.Command, args []string) error {
		feedback, err := os.ReadFile(review.DefaultFeedbackPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: no review feedback at %s: %v\n", review.DefaultFeedbackPath, err)
			exitCode = ExitRuntimeError
			return nil
		}
		weights := adaptive.LoadWeights(adaptive.DefaultWeightsPath)
		s, err := report.WriteSummary("", "", string(feedback), loadCalibrated(), weights)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] review summary written (confidence %d)\n", s.ConfidenceScore)
		return nil
	},
}

var reportDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Build dashboard_summary.json and the self-contained dashboard.html",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, log, ok := loadReportState()
		if !ok {
			return nil
		}
		snippet := ""
		if data, err := os.ReadFile(review.DefaultFeedbackPath); err == nil {
			snippet = string(data)
		}
		s, err := dashboard.Write(".", entries, log, snippet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] dashboard generated (%d reviews)\n", s.TotalReviews)
		return nil
	},
}

var reportRecruiterCmd = &cobra.Command{
	Use:   "recruiter",
	Short: "Build the recruiter-facing score and summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, log, ok := loadReportState()
		if !ok {
			return nil
		}
		summary := dashboardSummary(entries, log)
		weights := adaptive.LoadWeights(adaptive.DefaultWeightsPath)
		m := report.BuildRecruiterMetrics(summary, weights, loadCalibrated()*100)
		if err := report.WriteRecruiterReport("", "", m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] recruiter report written (impact %.2f)\n", m.ImpactScore)
		return nil
	},
}

var reportEvolutionCmd = &cobra.Command{
	Use:   "evolution",
	Short: "Update the evolution state, badge, and report",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, log, ok := loadReportState()
		if !ok {
			return nil
		}
		state, err := report.Evolve("", "", "", dashboardSummary(entries, log))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] evolution delta %+.1f%%\n", state.DeltaPriority)
		return nil
	},
}

var reportFinalCmd = &cobra.Command{
	Use:   "final",
	Short: "Write the final summary report",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, log, ok := loadReportState()
		if !ok {
			return nil
		}
		if err := report.WriteFinalReport(report.DefaultFinalReportPath, dashboardSummary(entries, log), log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] final report written to %s\n", report.DefaultFinalReportPath)
		return nil
	},
}

func loadReportState() ([]history.Entry, *adaptive.Log, bool) {
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil, nil, false
	}
	store := history.NewStore(cfg.HistoryPath, cfg.MaxHistory)
	log := adaptive.OpenLog(cfg.AdaptiveLog, cfg.MaxAdaptiveLog)
	return store.Load(), log, true
}

// dashboardSummary prefers the persisted dashboard summary and rebuilds
// it from the raw state when absent.
func dashboardSummary(entries []history.Entry, log *adaptive.Log) dashboard.Summary {
	s := dashboard.LoadSummary(dashboard.DefaultSummaryPath)
	if s.TotalReviews == 0 && len(entries) > 0 {
		s = dashboard.Build(entries, log)
	}
	return s
}

// loadCalibrated reads the calibrated confidence, defaulting to 0.5
// when no calibration has run yet.
func loadCalibrated() float64 {
	data, err := os.ReadFile(adaptive.DefaultConfidencePath)
	if err != nil {
		return 0.5
	}
	var c adaptive.Confidence
	if err := json.Unmarshal(data, &c); err != nil || c.Calibrated == 0 {
		return 0.5
	}
	return c.Calibrated
}

func init() {
	reportCmd.AddCommand(reportSummaryCmd)
	reportCmd.AddCommand(reportDashboardCmd)
	reportCmd.AddCommand(reportRecruiterCmd)
	reportCmd.AddCommand(reportEvolutionCmd)
	reportCmd.AddCommand(reportFinalCmd)
}
