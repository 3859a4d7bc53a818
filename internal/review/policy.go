package review

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPolicyPath is the repo-level policy file.
const DefaultPolicyPath = ".reviewloop.yml"

// Policy is the optional per-repository review policy. Zero values
// leave the corresponding config untouched.
type Policy struct {
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	MaxDiffChars int      `yaml:"max_diff_chars"`
	PostComment  *bool    `yaml:"post_comment"`
	RiskTerms    []string `yaml:"risk_terms"`
	SkipLabels   []string `yaml:"skip_labels"`
	FocusAreas   []string `yaml:"focus_areas"`

	// Categories maps a category name to extra keywords that classify
	// a PR into it, checked before the built-in keyword table.
	Categories map[string][]string `yaml:"categories"`
}

// LoadPolicy reads the policy file. A missing file yields an empty
// policy; a malformed file is an error so a typo does not silently
// disable the policy.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		path = DefaultPolicyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Policy{}, nil
		}
		return Policy{}, fmt.Errorf("reading policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// ShouldSkip reports whether any PR label matches a skip label.
func (p Policy) ShouldSkip(labels []string) bool {
	if len(p.SkipLabels) == 0 {
		return false
	}
	skip := map[string]bool{}
	for _, l := range p.SkipLabels {
		skip[l] = true
	}
	for _, l := range labels {
		if skip[l] {
			return true
		}
	}
	return false
}
