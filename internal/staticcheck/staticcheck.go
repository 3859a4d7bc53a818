package staticcheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultReportPath is the combined static analysis report.
const DefaultReportPath = "static_report.json"

// ToolResult captures one analyzer's outcome.
type ToolResult struct {
	Tool     string   `json:"tool"`
	ExitCode int      `json:"exit_code"`
	Findings []string `json:"findings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Report is the static_report.json document.
type Report struct {
	Results []ToolResult `json:"results"`
	Clean   bool         `json:"clean"`
}

// tools lists the analyzers to run, in order. Each produces one finding
// per output line.
var tools = []struct {
	name string
	args []string
}{
	{"gofmt", []string{"gofmt", "-l", "."}},
	{"govet", []string{"go", "vet", "./..."}},
}

// Run executes each analyzer in dir and merges their findings. A
// missing tool is recorded as an error, not a failure of the run.
func Run(dir string) Report {
	var report Report
	report.Clean = true
	for _, t := range tools {
		res := runTool(dir, t.name, t.args)
		if len(res.Findings) > 0 || res.ExitCode != 0 {
			report.Clean = false
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func runTool(dir, name string, args []string) ToolResult {
	res := ToolResult{Tool: name}
	if _, err := exec.LookPath(args[0]); err != nil {
		res.Error = fmt.Sprintf("%s not found in PATH", args[0])
		return res
	}
	fmt.Fprintf(os.Stderr, "[INFO] running %s\n", strings.Join(args, " "))

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Error = err.Error()
			return res
		}
	}
	for _, line := range strings.Split(out.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		res.Findings = append(res.Findings, line)
	}
	return res
}

// WriteReport runs the analyzers and persists the merged report.
func WriteReport(dir, path string) (Report, error) {
	if path == "" {
		path = DefaultReportPath
	}
	report := Run(dir)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return Report{}, fmt.Errorf("marshaling static report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Report{}, fmt.Errorf("writing static report: %w", err)
	}
	return report, nil
}
