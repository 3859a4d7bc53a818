package network

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
)

// defaultCoreSummary seeds the global summary before any aggregation
// has run.
func defaultCoreSummary(now string) map[string]any {
	return map[string]any{
		"generated_at":       now,
		"repositories":       []string{},
		"num_repos":          0,
		"metrics_aggregated": map[string]any{},
		"notes":              []string{"Initialized global knowledge core - no data yet."},
	}
}

// defaultCoreWeights is the neutral network weight vector.
func defaultCoreWeights() adaptive.Weights {
	return adaptive.Weights{
		"clarity":        1.0,
		"depth":          1.0,
		"risk_awareness": 1.0,
		"actionability":  1.0,
		"consistency":    1.0,
		"confidence":     1.0,
	}
}

// InitCore creates the global knowledge directory with neutral
// defaults. Existing files are left untouched so a re-run never wipes
// accumulated knowledge.
func InitCore(root string) error {
	dir := filepath.Join(root, GlobalDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating global knowledge dir: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	summaryPath := filepath.Join(dir, SummaryFile)
	if _, err := os.Stat(summaryPath); os.IsNotExist(err) {
		if err := writeJSON(summaryPath, defaultCoreSummary(now)); err != nil {
			return err
		}
	}

	weightsPath := filepath.Join(dir, WeightsFile)
	if _, err := os.Stat(weightsPath); os.IsNotExist(err) {
		if err := writeJSON(weightsPath, defaultCoreWeights()); err != nil {
			return err
		}
	}

	logPath := filepath.Join(dir, LogFile)
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		header := fmt.Sprintf("# Network Knowledge Core\n\nInitialized at %s\n\n", now)
		if err := os.WriteFile(logPath, []byte(header), 0o644); err != nil {
			return fmt.Errorf("writing network log: %w", err)
		}
	}
	return AppendCoreLog(root, "Global knowledge core initialized or verified.")
}

// AppendCoreLog records one event line in the network log.
func AppendCoreLog(root, entry string) error {
	logPath := filepath.Join(root, GlobalDir, LogFile)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening network log: %w", err)
	}
	defer f.Close()
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := fmt.Fprintf(f, "%s - %s\n", now, entry); err != nil {
		return fmt.Errorf("appending to network log: %w", err)
	}
	return nil
}
