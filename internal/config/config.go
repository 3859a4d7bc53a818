package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the reviewloop configuration.
type Config struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Format       string `json:"format"`
	MaxDiffChars int    `json:"maxDiffChars"`
	ContextLines int    `json:"contextLines"`

	HistoryPath    string `json:"historyPath"`
	MaxHistory     int    `json:"maxHistory"`
	AdaptiveLog    string `json:"adaptiveLog"`
	MaxAdaptiveLog int    `json:"maxAdaptiveLog"`

	PostComment bool `json:"postComment"`

	Hub     HubConfig     `json:"hub"`
	Cache   CacheConfig   `json:"cache"`
	Privacy PrivacyConfig `json:"privacy"`
}

// HubConfig points at the shared knowledge hub repository.
type HubConfig struct {
	RepoURL  string `json:"repoUrl,omitempty"`
	Branch   string `json:"branch"`
	Endpoint string `json:"endpoint,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		Format:         "text",
		MaxDiffChars:   12000,
		ContextLines:   3,
		HistoryPath:    "review_history.json",
		MaxHistory:     200,
		AdaptiveLog:    "ai_adaptive_log.json",
		MaxAdaptiveLog: 400,
		PostComment:    true,
		Hub: HubConfig{
			Branch: "main",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reviewloop"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "reviewloop"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "reviewloop"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "reviewloop"), nil
	default:
		return filepath.Join(home, ".config", "reviewloop"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadLocal returns the defaults overlaid with the config file only,
// without environment or flag overrides. Used when editing the file.
func LoadLocal() (Config, error) {
	cfg := Default()
	fileCfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}
	mergeFile(&cfg, fileCfg)
	return cfg, nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.MaxDiffChars > 0 {
		dst.MaxDiffChars = src.MaxDiffChars
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if src.HistoryPath != "" {
		dst.HistoryPath = src.HistoryPath
	}
	if src.MaxHistory > 0 {
		dst.MaxHistory = src.MaxHistory
	}
	if src.AdaptiveLog != "" {
		dst.AdaptiveLog = src.AdaptiveLog
	}
	if src.MaxAdaptiveLog > 0 {
		dst.MaxAdaptiveLog = src.MaxAdaptiveLog
	}
	if src.Hub.RepoURL != "" {
		dst.Hub.RepoURL = src.Hub.RepoURL
	}
	if src.Hub.Branch != "" {
		dst.Hub.Branch = src.Hub.Branch
	}
	if src.Hub.Endpoint != "" {
		dst.Hub.Endpoint = src.Hub.Endpoint
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields from file: JSON zero value is indistinguishable from
	// unset in a simple merge, so enabled flags only widen.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REVIEWLOOP_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("REVIEWLOOP_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REVIEWLOOP_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("REVIEWLOOP_MAX_DIFF_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffChars = n
		}
	}
	if v := os.Getenv("REVIEWLOOP_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = v
	}
	if v := os.Getenv("NETWORK_HUB_REPO"); v != "" {
		cfg.Hub.RepoURL = v
	}
	if v := os.Getenv("NETWORK_HUB_BRANCH"); v != "" {
		cfg.Hub.Branch = v
	}
	if v := os.Getenv("KNOWLEDGE_CORE_ENDPOINT"); v != "" {
		cfg.Hub.Endpoint = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["maxDiffChars"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffChars = n
		}
	}
	if v, ok := overrides["historyPath"]; ok && v != "" {
		cfg.HistoryPath = v
	}
	if v, ok := overrides["hubRepoUrl"]; ok && v != "" {
		cfg.Hub.RepoURL = v
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "maxDiffChars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffChars must be an integer: %w", err)
		}
		cfg.MaxDiffChars = n
	case "historyPath":
		cfg.HistoryPath = value
	case "maxHistory":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxHistory must be an integer: %w", err)
		}
		cfg.MaxHistory = n
	case "hub.repoUrl":
		cfg.Hub.RepoURL = value
	case "hub.branch":
		cfg.Hub.Branch = value
	case "hub.endpoint":
		cfg.Hub.Endpoint = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetField returns a single config value by the same key names SetField
// accepts.
func GetField(cfg Config, key string) (string, error) {
	switch key {
	case "provider":
		return cfg.Provider, nil
	case "model":
		return cfg.Model, nil
	case "format":
		return cfg.Format, nil
	case "maxDiffChars":
		return strconv.Itoa(cfg.MaxDiffChars), nil
	case "historyPath":
		return cfg.HistoryPath, nil
	case "maxHistory":
		return strconv.Itoa(cfg.MaxHistory), nil
	case "hub.repoUrl":
		return cfg.Hub.RepoURL, nil
	case "hub.branch":
		return cfg.Hub.Branch, nil
	case "hub.endpoint":
		return cfg.Hub.Endpoint, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
