package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/gitctx"
	"github.com/dshills/reviewloop/internal/review"
	"gopkg.in/yaml.v3"
)

// chdirTemp changes into a fresh temp directory for the duration of the
// test, restoring the original working directory afterward. Equivalent to
// t.Chdir(t.TempDir()), which needs a newer Go testing package.
func chdirTemp(t *testing.T) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			t.Fatal(err)
		}
	})
}

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagProvider = ""
	flagModel = ""
	flagFormat = ""
	flagOut = ""
	flagMaxDiffChars = 0
	flagContextLines = 0
	flagFailOn = "none"
	flagNoRedact = false
	flagNoPost = false
	flagMock = false
	flagDiffFile = ""
	flagTitle = ""
	flagOwner = ""
	flagRepo = ""
	flagMergeBase = false
	flagHistoryJSON = false
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProvider = "anthropic"
	flagModel = "claude-sonnet-4-5"
	flagFormat = "json"
	flagMaxDiffChars = 4000

	m := buildOverrides()

	expected := map[string]string{
		"provider":     "anthropic",
		"model":        "claude-sonnet-4-5",
		"format":       "json",
		"maxDiffChars": "4000",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestBuildOverrides_ZeroIntsExcluded(t *testing.T) {
	resetFlags()
	flagProvider = "openai"

	m := buildOverrides()

	if _, ok := m["maxDiffChars"]; ok {
		t.Error("maxDiffChars=0 should not be in overrides")
	}
	if len(m) != 1 {
		t.Errorf("buildOverrides() = %v, want only provider", m)
	}
}

// --- applyPolicy tests ---

func TestApplyPolicy(t *testing.T) {
	post := false
	cfg := config.Default()
	applyPolicy(&cfg, review.Policy{
		Provider:     "ollama",
		MaxDiffChars: 9000,
		PostComment:  &post,
	})

	if cfg.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	if cfg.MaxDiffChars != 9000 {
		t.Errorf("maxDiffChars = %d, want 9000", cfg.MaxDiffChars)
	}
	if cfg.PostComment {
		t.Error("postComment should be disabled by the policy")
	}
	// Unset policy fields keep config values.
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want config default", cfg.Model)
	}
}

// --- localInput tests ---

func TestLocalInput(t *testing.T) {
	resetFlags()
	diff := gitctx.DiffResult{
		Diff: "diff --git a/main.go b/main.go\n",
		Mode: "staged",
		Repo: gitctx.RepoMeta{Root: "/work/repo"},
	}

	in := localInput(diff)
	if in.Title != "Local diff (staged)" {
		t.Errorf("Title = %q", in.Title)
	}
	if in.PRNumber != "0" {
		t.Errorf("PRNumber = %q, want 0", in.PRNumber)
	}
	if in.Repo != "/work/repo" {
		t.Errorf("Repo = %q", in.Repo)
	}

	flagTitle = "Fix auth bypass"
	if got := localInput(diff); got.Title != "Fix auth bypass" {
		t.Errorf("Title = %q, want flag value", got.Title)
	}
	flagTitle = ""
}

// --- loadSelfEval tests ---

func TestLoadSelfEval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "self_eval_metrics.json")

	if got := loadSelfEval(path); got != nil {
		t.Errorf("missing file should yield nil, got %v", got)
	}

	if err := os.WriteFile(path, []byte(`{"ai_self_score": 0.82, "notes": "good"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got := loadSelfEval(path)
	if got["ai_self_score"] != 0.82 {
		t.Errorf("ai_self_score = %v, want 0.82", got["ai_self_score"])
	}
	if _, ok := got["notes"]; ok {
		t.Error("non-numeric fields should be dropped")
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := loadSelfEval(path); got != nil {
		t.Errorf("malformed file should yield nil, got %v", got)
	}
}

// --- loadCalibrated tests ---

func TestLoadCalibrated(t *testing.T) {
	chdirTemp(t)

	if got := loadCalibrated(); got != 0.5 {
		t.Errorf("loadCalibrated() without file = %v, want 0.5", got)
	}

	if err := os.WriteFile("reviewer_confidence.json", []byte(`{"calibrated_confidence": 0.74}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := loadCalibrated(); got != 0.74 {
		t.Errorf("loadCalibrated() = %v, want 0.74", got)
	}
}

// --- workflow section management tests ---

func TestGenerateWorkflow_ValidYAML(t *testing.T) {
	section := generateWorkflow("high")

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(section), &doc); err != nil {
		t.Fatalf("generated workflow is not valid YAML: %v", err)
	}
	if !strings.Contains(section, "--fail-on high") {
		t.Error("workflow missing fail-on threshold")
	}
	if !strings.HasPrefix(section, workflowMarkerStart) {
		t.Error("workflow missing start marker")
	}
}

func TestReplaceWorkflowSection(t *testing.T) {
	old := generateWorkflow("none")
	updated := replaceWorkflowSection(old, generateWorkflow("high"))

	if strings.Contains(updated, "--fail-on none") {
		t.Error("old section survived replacement")
	}
	if !strings.Contains(updated, "--fail-on high") {
		t.Error("new section missing after replacement")
	}
	if strings.Count(updated, workflowMarkerStart) != 1 {
		t.Errorf("expected exactly one section, got %d", strings.Count(updated, workflowMarkerStart))
	}
}

func TestReplaceWorkflowSection_AppendsWhenUnmanaged(t *testing.T) {
	existing := "name: other\non: push\n"
	updated := replaceWorkflowSection(existing, generateWorkflow("none"))

	if !strings.HasPrefix(updated, "name: other") {
		t.Error("existing content should be preserved")
	}
	if !strings.Contains(updated, workflowMarkerStart) {
		t.Error("section should be appended")
	}
}

func TestRemoveWorkflowSection(t *testing.T) {
	content := "# custom header\n" + generateWorkflow("none")
	got := removeWorkflowSection(content)

	if strings.Contains(got, workflowMarkerStart) {
		t.Error("section not removed")
	}
	if !strings.Contains(got, "# custom header") {
		t.Error("unmanaged content should survive")
	}

	untouched := "name: other\n"
	if removeWorkflowSection(untouched) != untouched {
		t.Error("content without markers should pass through")
	}
}

func TestActionInstallUninstall(t *testing.T) {
	resetFlags()
	chdirTemp(t)

	actionCmd.SetArgs([]string{"install"})
	if err := actionCmd.Execute(); err != nil {
		t.Fatalf("action install returned error: %v", err)
	}
	data, err := os.ReadFile(workflowPath)
	if err != nil {
		t.Fatalf("workflow file not written: %v", err)
	}
	if !strings.Contains(string(data), "reviewloop review pr") {
		t.Error("workflow missing review step")
	}

	actionCmd.SetArgs([]string{"uninstall"})
	if err := actionCmd.Execute(); err != nil {
		t.Fatalf("action uninstall returned error: %v", err)
	}
	if _, err := os.Stat(workflowPath); !os.IsNotExist(err) {
		t.Error("workflow file should be removed when only the managed section remains")
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	configPath := filepath.Join(tmpDir, "reviewloop", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config init did not create config.json: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg.Provider == "" {
		t.Error("config file has empty provider")
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfgDir := filepath.Join(tmpDir, "reviewloop")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(`{"provider":"anthropic"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("config init overwrote existing file: provider = %q", cfg.Provider)
	}
}

func TestConfigSet_PreservesDefaults(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configCmd.SetArgs([]string{"set", "provider", "ollama"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "reviewloop", "config.json"))
	if err != nil {
		t.Fatalf("cannot read config file: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	// Setting one key on a missing file must not zero the rest.
	if cfg.MaxHistory != 200 {
		t.Errorf("maxHistory = %d, want default 200", cfg.MaxHistory)
	}
	if cfg.HistoryPath != "review_history.json" {
		t.Errorf("historyPath = %q, want default", cfg.HistoryPath)
	}
}

func TestConfigSet_InvalidKey(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"set", "unknownKey", "value"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with invalid key should return error")
	}
}

func TestConfigGet(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"get", "provider"})
	if err := configCmd.Execute(); err != nil {
		t.Errorf("config get returned error: %v", err)
	}

	configCmd.SetArgs([]string{"get", "nosuchkey"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config get with unknown key should return error")
	}
}

func TestConfigList_Execute(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"list"})
	if err := configCmd.Execute(); err != nil {
		t.Errorf("config list returned error: %v", err)
	}
}

// --- cache command tests ---

func TestCacheShow_Execute(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_CACHE_HOME", tmpDir)

	cacheCmd.SetArgs([]string{"show"})
	if err := cacheCmd.Execute(); err != nil {
		t.Errorf("cache show returned error: %v", err)
	}
}

func TestCacheClear_Execute(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_CACHE_HOME", tmpDir)

	cacheDir := filepath.Join(tmpDir, "reviewloop")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "abc123.json"), []byte(`{"key":"test"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cacheCmd.SetArgs([]string{"clear"})
	if err := cacheCmd.Execute(); err != nil {
		t.Errorf("cache clear returned error: %v", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("cannot read cache dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Errorf("cache clear did not remove %s", e.Name())
		}
	}
}

// --- review command structure tests ---

func TestReviewCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"pr":       false,
		"range":    false,
		"staged":   false,
		"unstaged": false,
	}

	for _, sub := range reviewCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("review subcommand %q not found", name)
		}
	}
}

func TestReviewPRCmd_InvalidNumber(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	savedExitCode := exitCode
	t.Cleanup(func() { exitCode = savedExitCode })
	exitCode = ExitSuccess

	reviewCmd.SetArgs([]string{"pr", "abc"})
	if err := reviewCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitUsageError {
		t.Errorf("exitCode = %d, want %d (ExitUsageError)", exitCode, ExitUsageError)
	}
}

func TestReviewPRCmd_MissingArg(t *testing.T) {
	resetFlags()

	reviewCmd.SetArgs([]string{"pr"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review pr without args should return error")
	}
}

func TestReviewRangeCmd_MissingArg(t *testing.T) {
	resetFlags()

	reviewCmd.SetArgs([]string{"range"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review range without arg should return error")
	}
}

// --- learn/network/report command structure tests ---

func TestLearnCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{"weights": false, "rewards": false, "confidence": false, "fuse": false}
	for _, sub := range learnCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("learn subcommand %q not found", name)
		}
	}
}

func TestNetworkCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{"init": false, "aggregate": false, "sync": false}
	for _, sub := range networkCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("network subcommand %q not found", name)
		}
	}
}

func TestReportCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"summary": false, "dashboard": false, "recruiter": false,
		"evolution": false, "final": false,
	}
	for _, sub := range reportCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("report subcommand %q not found", name)
		}
	}
}

// --- exit code constants tests ---

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitFindings", ExitFindings, 1},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitAuthError", ExitAuthError, 3},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestVersionConstant(t *testing.T) {
	if version == "" {
		t.Error("version constant is empty")
	}
}
