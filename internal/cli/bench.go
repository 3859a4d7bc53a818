package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/bench"
	"github.com/dshills/reviewloop/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagBenchRuns int
	flagBenchDir  string
	flagBenchLive bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the synthetic review benchmark",
	Long: "Push fixed synthetic diffs through the review pipeline and record score,\n" +
		"latency, and a stability checksum. Uses the mock reviewer unless --live.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := bench.NewRunner(nil, flagBenchDir)
		if flagBenchLive {
			cfg, err := config.Load(buildOverrides())
			if err != nil {
				return err
			}
			runner = bench.NewRunner(buildProvider(cfg), flagBenchDir)
		}
		if flagBenchRuns > 0 {
			runner.Runs = flagBenchRuns
		}

		report, err := runner.Run(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		s := report.Summary
		fmt.Fprintf(os.Stdout, "Benchmark: %d runs, avg score %.2f, avg latency %.3fs, checksum %s\n",
			s.Runs, s.AvgScore, s.AvgLatency, s.Checksum)
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchRuns, "runs", 0, "Number of benchmark runs (default 3)")
	benchCmd.Flags().StringVar(&flagBenchDir, "dir", "", "Output directory (default benchmarks/)")
	benchCmd.Flags().BoolVar(&flagBenchLive, "live", false, "Benchmark the configured provider instead of the mock")
}
