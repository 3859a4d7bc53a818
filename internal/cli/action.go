package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	workflowPath        = ".github/workflows/reviewloop.yml"
	workflowMarkerStart = "# >>> reviewloop workflow >>>"
	workflowMarkerEnd   = "# <<< reviewloop workflow <<<"
)

var actionFailOn string

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Manage the GitHub Actions workflow",
}

var actionInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install or refresh the review workflow file",
	RunE: func(cmd *cobra.Command, args []string) error {
		section := generateWorkflow(actionFailOn)

		// A malformed template must never land in the repo.
		var doc map[string]any
		if err := yaml.Unmarshal([]byte(section), &doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: generated workflow is not valid YAML: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(workflowPath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading workflow file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = section
		} else {
			content = replaceWorkflowSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(workflowPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating workflows directory: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if err := os.WriteFile(workflowPath, []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing workflow file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Installed review workflow at %s\n", workflowPath)
		return nil
	},
}

var actionUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the review workflow section",
	RunE: func(cmd *cobra.Command, args []string) error {
		existing, err := os.ReadFile(workflowPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stdout, "No review workflow found.")
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error reading workflow file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeWorkflowSection(string(existing))
		if strings.TrimSpace(content) == "" {
			if err := os.Remove(workflowPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing workflow file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed review workflow at %s\n", workflowPath)
			return nil
		}

		if err := os.WriteFile(workflowPath, []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing workflow file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stdout, "Removed review section from %s\n", workflowPath)
		return nil
	},
}

func generateWorkflow(failOn string) string {
	var b strings.Builder
	b.WriteString(workflowMarkerStart + "\n")
	b.WriteString("name: reviewloop\n")
	b.WriteString("on:\n")
	b.WriteString("  pull_request:\n")
	b.WriteString("    types: [opened, synchronize, reopened]\n")
	b.WriteString("permissions:\n")
	b.WriteString("  contents: read\n")
	b.WriteString("  pull-requests: write\n")
	b.WriteString("jobs:\n")
	b.WriteString("  review:\n")
	b.WriteString("    runs-on: ubuntu-latest\n")
	b.WriteString("    steps:\n")
	b.WriteString("      - uses: actions/checkout@v4\n")
	b.WriteString("        with:\n")
	b.WriteString("          fetch-depth: 0\n")
	b.WriteString("      - name: Run adaptive review\n")
	b.WriteString("        env:\n")
	b.WriteString("          GITHUB_TOKEN: ${{ secrets.GITHUB_TOKEN }}\n")
	b.WriteString("          OPENAI_API_KEY: ${{ secrets.OPENAI_API_KEY }}\n")
	b.WriteString("        run: |\n")
	b.WriteString(fmt.Sprintf("          reviewloop review pr ${{ github.event.pull_request.number }} --fail-on %s\n", failOn))
	b.WriteString("          reviewloop learn\n")
	b.WriteString("          reviewloop report dashboard\n")
	b.WriteString(workflowMarkerEnd + "\n")
	return b.String()
}

func replaceWorkflowSection(existing, section string) string {
	startIdx := strings.Index(existing, workflowMarkerStart)
	endIdx := strings.Index(existing, workflowMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(workflowMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeWorkflowSection(existing string) string {
	startIdx := strings.Index(existing, workflowMarkerStart)
	endIdx := strings.Index(existing, workflowMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(workflowMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	actionCmd.AddCommand(actionInstallCmd)
	actionCmd.AddCommand(actionUninstallCmd)
	actionInstallCmd.Flags().StringVar(&actionFailOn, "fail-on", "none", "Exit 1 threshold used in the workflow (none, high, any)")
}
