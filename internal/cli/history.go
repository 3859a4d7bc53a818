package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/spf13/cobra"
)

var flagHistoryJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the review history store",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List recorded reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, ok := loadEntries()
		if !ok {
			return nil
		}
		if flagHistoryJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, "No reviews on record.")
			return nil
		}
		for _, e := range entries {
			risk := ""
			if e.HighRisk {
				risk = "  [HIGH RISK]"
			}
			fmt.Fprintf(os.Stdout, "PR %-6s %-18s %3d/100%s  %s\n",
				e.PRNumber, e.Category, e.PriorityScore, risk, e.Title)
		}
		return nil
	},
}

var historyMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print aggregate history metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		store := history.NewStore(cfg.HistoryPath, cfg.MaxHistory)
		metrics := history.ComputeMetrics(store.Load())
		data, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyMetricsCmd)
	historyShowCmd.Flags().BoolVar(&flagHistoryJSON, "json", false, "Print entries as JSON")
}
