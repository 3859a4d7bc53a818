package network

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
)

// Global knowledge artifact layout.
const (
	GlobalDir   = "global_knowledge"
	SummaryFile = "global_summary.json"
	WeightsFile = "adaptive_network_weights.json"
	LogFile     = "network_log.md"
)

// artifactNames are the file names worth collecting when scanning for
// learning output from other repositories.
var artifactNames = map[string]bool{
	"review_history.json":           true,
	"self_eval_metrics.json":        true,
	"improvement_plan.json":         true,
	"adaptive_weights.json":         true,
	"learning_weights.json":         true,
	"adaptive_network_weights.json": true,
	"reward_matrix.json":            true,
	"ai_adaptive_log.json":          true,
}

// Aggregated holds the network-wide metric averages. Nil pointers mean
// no source carried that metric.
type Aggregated struct {
	AvgClarity            *float64 `json:"avg_clarity"`
	AvgActionability      *float64 `json:"avg_actionability"`
	AvgPriorityScore      *float64 `json:"avg_priority_score"`
	AvgLearningIndex      *float64 `json:"avg_learning_index"`
	AvgReinforcementScore *float64 `json:"avg_reinforcement_score"`
	NumSources            int      `json:"num_sources"`
}

// Source describes what one scanned artifact contributed.
type Source struct {
	Path          string             `json:"source"`
	NumReviews    *int               `json:"num_reviews,omitempty"`
	AvgPriority   *float64           `json:"avg_priority,omitempty"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	WeightKeys    []string           `json:"weights,omitempty"`
	RewardOverall *float64           `json:"reward_overall,omitempty"`
}

// Summary is the payload written to global_summary.json.
type Summary struct {
	GeneratedAt       string     `json:"generated_at"`
	AggregatedMetrics Aggregated `json:"aggregated_metrics"`
	Sources           []Source   `json:"sources"`
	Notes             []string   `json:"notes"`
}

// FindArtifacts walks root looking for known learning artifacts.
// Hidden directories and the global output directory are skipped so an
// aggregation run never feeds on its own output.
func FindArtifacts(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep walking
		}
		if d.IsDir() {
			name := d.Name()
			if name != "." && (strings.HasPrefix(name, ".") || name == GlobalDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if artifactNames[d.Name()] {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// Aggregate reads each artifact and folds its metrics into the
// network-wide averages. Unreadable files are skipped.
func Aggregate(paths []string) (Aggregated, []Source, []adaptive.Weights) {
	var (
		sources       []Source
		clarity       []float64
		actionability []float64
		priority      []float64
		learningIdx   []float64
		reinforcement []float64
		weightSets    []adaptive.Weights
	)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		switch base := filepath.Base(p); base {
		case "review_history.json":
			entries := decodeHistory(data)
			src := Source{Path: p, NumReviews: intPtr(len(entries))}
			if scores := history.Scores(entries); len(scores) > 0 {
				avg := round2(meanOf(scores))
				src.AvgPriority = &avg
				priority = append(priority, meanOf(scores))
			}
			sources = append(sources, src)
		case "self_eval_metrics.json":
			metrics := decodeFloats(data)
			src := Source{Path: p, Metrics: metrics}
			if v, ok := metrics["learning_index"]; ok {
				learningIdx = append(learningIdx, v)
			}
			if v, ok := metrics["clarity"]; ok {
				clarity = append(clarity, v)
			}
			if v, ok := metrics["actionability"]; ok {
				actionability = append(actionability, v)
			}
			if v, ok := metrics["avg_priority_score"]; ok {
				priority = append(priority, v)
			}
			sources = append(sources, src)
		case "adaptive_weights.json", "learning_weights.json", "adaptive_network_weights.json":
			w := decodeFloats(data)
			if len(w) > 0 {
				weightSets = append(weightSets, adaptive.Weights(w))
			}
			keys := make([]string, 0, len(w))
			for k := range w {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			sources = append(sources, Source{Path: p, WeightKeys: keys})
		case "reward_matrix.json":
			metrics := decodeFloats(data)
			src := Source{Path: p}
			if v, ok := metrics["overall_reward_score"]; ok {
				reinforcement = append(reinforcement, v)
				src.RewardOverall = &v
			}
			sources = append(sources, src)
		default:
			sources = append(sources, Source{Path: p})
		}
	}

	agg := Aggregated{
		AvgClarity:            avgPtr(clarity),
		AvgActionability:      avgPtr(actionability),
		AvgPriorityScore:      avgPtr(priority),
		AvgLearningIndex:      avgPtr(learningIdx),
		AvgReinforcementScore: avgPtr(reinforcement),
		NumSources:            len(paths),
	}
	return agg, sources, weightSets
}

// Run scans root for artifacts, aggregates them, and writes the global
// knowledge outputs under root/global_knowledge. When the
// KNOWLEDGE_CORE_ENDPOINT env var is set the summary is also posted
// there; a failed post is logged but never fails the run.
func Run(root string) (Summary, error) {
	paths, err := FindArtifacts(root)
	if err != nil {
		return Summary{}, fmt.Errorf("scanning for artifacts: %w", err)
	}
	fmt.Fprintf(os.Stderr, "[INFO] found %d candidate artifact files\n", len(paths))

	agg, sources, weightSets := Aggregate(paths)
	merged := adaptive.MergeWeightSets(weightSets)

	summary := Summary{
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		AggregatedMetrics: agg,
		Sources:           sources,
		Notes:             []string{"Aggregated from scanned review artifacts."},
	}

	dir := filepath.Join(root, GlobalDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating global knowledge dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, SummaryFile), summary); err != nil {
		return Summary{}, err
	}
	if err := writeJSON(filepath.Join(dir, WeightsFile), merged); err != nil {
		return Summary{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, LogFile), []byte(networkLog(summary, merged)), 0o644); err != nil {
		return Summary{}, fmt.Errorf("writing network log: %w", err)
	}

	if endpoint := os.Getenv("KNOWLEDGE_CORE_ENDPOINT"); endpoint != "" {
		if err := postSummary(endpoint, summary, merged); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] remote push failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "[INFO] pushed aggregated knowledge to %s\n", endpoint)
		}
	}
	return summary, nil
}

func networkLog(s Summary, merged adaptive.Weights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Network Aggregation Log\n\nGenerated: %s\n\n", s.GeneratedAt)
	b.WriteString("## Aggregated Metrics\n\n")
	writeMetricLine(&b, "avg_clarity", s.AggregatedMetrics.AvgClarity)
	writeMetricLine(&b, "avg_actionability", s.AggregatedMetrics.AvgActionability)
	writeMetricLine(&b, "avg_priority_score", s.AggregatedMetrics.AvgPriorityScore)
	writeMetricLine(&b, "avg_learning_index", s.AggregatedMetrics.AvgLearningIndex)
	writeMetricLine(&b, "avg_reinforcement_score", s.AggregatedMetrics.AvgReinforcementScore)
	fmt.Fprintf(&b, "- num_sources: %d\n", s.AggregatedMetrics.NumSources)
	b.WriteString("\n## Sources Scanned\n\n")
	for _, src := range s.Sources {
		fmt.Fprintf(&b, "- %s\n", src.Path)
	}
	b.WriteString("\n## Merged Weights Snapshot\n\n")
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %g\n", k, merged[k])
	}
	b.WriteString("\nAggregation complete.\n")
	return b.String()
}

func writeMetricLine(b *strings.Builder, name string, v *float64) {
	if v == nil {
		fmt.Fprintf(b, "- %s: n/a\n", name)
		return
	}
	fmt.Fprintf(b, "- %s: %g\n", name, *v)
}

type corePayload struct {
	Summary     Summary          `json:"summary"`
	Weights     adaptive.Weights `json:"weights"`
	GeneratedAt string           `json:"generated_at"`
}

func postSummary(endpoint string, s Summary, merged adaptive.Weights) error {
	body, err := json.Marshal(corePayload{Summary: s, Weights: merged, GeneratedAt: s.GeneratedAt})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(endpoint, "application/json", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// decodeHistory tolerates both the bare-list and wrapped history
// layouts other repositories may publish.
func decodeHistory(data []byte) []history.Entry {
	var entries []history.Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries
	}
	var wrapped struct {
		Entries []history.Entry `json:"entries"`
		Reviews []history.Entry `json:"reviews"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if len(wrapped.Entries) > 0 {
			return wrapped.Entries
		}
		return wrapped.Reviews
	}
	return nil
}

// decodeFloats keeps only the numeric fields of a JSON object.
func decodeFloats(data []byte) map[string]float64 {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(map[string]float64)
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func avgPtr(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	v := round3(meanOf(vals))
	return &v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func intPtr(n int) *int { return &n }
