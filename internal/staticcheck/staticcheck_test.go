package staticcheck

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRunTool_MissingBinary(t *testing.T) {
	res := runTool(t.TempDir(), "missing", []string{"definitely-not-a-real-tool-xyz"})
	if res.Error == "" {
		t.Error("expected error for missing tool")
	}
	if res.Tool != "missing" {
		t.Errorf("Tool = %q", res.Tool)
	}
}

func TestRunTool_CapturesOutput(t *testing.T) {
	// Use a shell-independent command that is always present with git.
	res := runTool(t.TempDir(), "git", []string{"git", "--version"})
	if res.Error != "" {
		t.Skipf("git unavailable: %s", res.Error)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d", res.ExitCode)
	}
	if len(res.Findings) == 0 {
		t.Error("no output captured")
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "static_report.json")

	if _, err := WriteReport(dir, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 2 {
		t.Errorf("results = %d, want one per tool", len(report.Results))
	}
	for _, r := range report.Results {
		if r.Tool == "" {
			t.Error("unnamed tool result")
		}
	}
}
