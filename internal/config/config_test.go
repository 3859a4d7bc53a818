package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "openai" {
		t.Errorf("Default provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Default model = %q", cfg.Model)
	}
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.MaxDiffChars != 12000 {
		t.Errorf("Default maxDiffChars = %d, want 12000", cfg.MaxDiffChars)
	}
	if cfg.HistoryPath != "review_history.json" {
		t.Errorf("Default historyPath = %q", cfg.HistoryPath)
	}
	if cfg.MaxHistory != 200 {
		t.Errorf("Default maxHistory = %d, want 200", cfg.MaxHistory)
	}
	if cfg.Hub.Branch != "main" {
		t.Errorf("Default hub branch = %q, want main", cfg.Hub.Branch)
	}
	if !cfg.Cache.Enabled {
		t.Error("Default cache should be enabled")
	}
	if !cfg.Privacy.RedactSecrets {
		t.Error("Default redactSecrets should be true")
	}
	if !cfg.PostComment {
		t.Error("Default postComment should be true")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("REVIEWLOOP_PROVIDER", "ollama")
	t.Setenv("REVIEWLOOP_MODEL", "llama3")
	t.Setenv("REVIEWLOOP_MAX_DIFF_CHARS", "5000")
	t.Setenv("NETWORK_HUB_REPO", "https://github.com/org/knowledge-hub")
	t.Setenv("KNOWLEDGE_CORE_ENDPOINT", "https://core.example.com/ingest")

	cfg := Default()
	mergeEnv(&cfg)

	if cfg.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	if cfg.Model != "llama3" {
		t.Errorf("model = %q, want llama3", cfg.Model)
	}
	if cfg.MaxDiffChars != 5000 {
		t.Errorf("maxDiffChars = %d, want 5000", cfg.MaxDiffChars)
	}
	if cfg.Hub.RepoURL != "https://github.com/org/knowledge-hub" {
		t.Errorf("hub repoUrl = %q", cfg.Hub.RepoURL)
	}
	if cfg.Hub.Endpoint != "https://core.example.com/ingest" {
		t.Errorf("hub endpoint = %q", cfg.Hub.Endpoint)
	}
}

func TestMergeEnv_InvalidInt(t *testing.T) {
	t.Setenv("REVIEWLOOP_MAX_DIFF_CHARS", "not-a-number")

	cfg := Default()
	mergeEnv(&cfg)

	if cfg.MaxDiffChars != 12000 {
		t.Errorf("maxDiffChars = %d, want default 12000 on bad env value", cfg.MaxDiffChars)
	}
}

func TestMergeFile(t *testing.T) {
	dst := Default()
	src := Config{
		Provider:    "anthropic",
		MaxHistory:  50,
		HistoryPath: "custom_history.json",
		Hub:         HubConfig{RepoURL: "git@github.com:org/hub.git"},
	}
	mergeFile(&dst, src)

	if dst.Provider != "anthropic" {
		t.Errorf("provider = %q", dst.Provider)
	}
	if dst.MaxHistory != 50 {
		t.Errorf("maxHistory = %d", dst.MaxHistory)
	}
	if dst.HistoryPath != "custom_history.json" {
		t.Errorf("historyPath = %q", dst.HistoryPath)
	}
	// Unset fields keep defaults.
	if dst.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want default", dst.Model)
	}
	if dst.Hub.Branch != "main" {
		t.Errorf("hub branch = %q, want default main", dst.Hub.Branch)
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	mergeOverrides(&cfg, map[string]string{
		"provider":     "mock",
		"maxDiffChars": "2000",
		"format":       "",
	})

	if cfg.Provider != "mock" {
		t.Errorf("provider = %q, want mock", cfg.Provider)
	}
	if cfg.MaxDiffChars != 2000 {
		t.Errorf("maxDiffChars = %d, want 2000", cfg.MaxDiffChars)
	}
	if cfg.Format != "text" {
		t.Errorf("empty override should not clear format, got %q", cfg.Format)
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(Config) bool
	}{
		{"provider", "ollama", false, func(c Config) bool { return c.Provider == "ollama" }},
		{"model", "llama3", false, func(c Config) bool { return c.Model == "llama3" }},
		{"maxHistory", "75", false, func(c Config) bool { return c.MaxHistory == 75 }},
		{"maxHistory", "abc", true, nil},
		{"hub.repoUrl", "https://github.com/o/r", false, func(c Config) bool { return c.Hub.RepoURL == "https://github.com/o/r" }},
		{"hub.branch", "develop", false, func(c Config) bool { return c.Hub.Branch == "develop" }},
		{"nosuchkey", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"_"+tt.value, func(t *testing.T) {
			cfg := Default()
			err := SetField(&cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetField(%q, %q) err = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if err == nil && !tt.check(cfg) {
				t.Errorf("SetField(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg-test/reviewloop" {
		t.Errorf("ConfigDir = %q", dir)
	}
}

func TestGetField(t *testing.T) {
	cfg := Default()
	cfg.Hub.RepoURL = "https://github.com/o/hub"

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"provider", "openai", false},
		{"maxDiffChars", "12000", false},
		{"hub.repoUrl", "https://github.com/o/hub", false},
		{"hub.branch", "main", false},
		{"nosuchkey", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := GetField(cfg, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetField(%q) err = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GetField(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadLocal_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadLocal()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" || cfg.MaxHistory != 200 {
		t.Errorf("LoadLocal without file should return defaults, got %+v", cfg)
	}
}
