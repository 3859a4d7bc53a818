package cli

import (
	"fmt"
	"os"

	"github.com/dshills/reviewloop/internal/staticcheck"
	"github.com/spf13/cobra"
)

var flagStaticDir string

var staticCmd = &cobra.Command{
	Use:   "static",
	Short: "Run static analysis tools and merge the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := staticcheck.WriteReport(flagStaticDir, staticcheck.DefaultReportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		for _, r := range report.Results {
			if r.Error != "" {
				fmt.Fprintf(os.Stderr, "[WARN] %s: %s\n", r.Tool, r.Error)
				continue
			}
			fmt.Fprintf(os.Stdout, "%s: %d findings\n", r.Tool, len(r.Findings))
		}
		if !report.Clean {
			exitCode = ExitFindings
		}
		return nil
	},
}

func init() {
	staticCmd.Flags().StringVar(&flagStaticDir, "dir", ".", "Directory to analyze")
}
