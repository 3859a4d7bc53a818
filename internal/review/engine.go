package review

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/dshills/reviewloop/internal/providers"
	"github.com/dshills/reviewloop/internal/redact"
)

// Default artifact paths, relative to the working directory.
const (
	DefaultFeedbackPath = "ai_review.md"
	DefaultMetadataPath = "review_metadata.json"
)

// Engine orchestrates a review run. Provider may be nil, which forces
// mock mode.
type Engine struct {
	Provider providers.Reviewer
	Store    *history.Store
	Log      *adaptive.Log
	Weights  adaptive.Weights

	RedactSecrets bool
	MaxDiffChars  int
	FeedbackPath  string
	MetadataPath  string

	// Policy additions folded into prompting and scoring.
	ExtraRiskTerms    []string
	FocusAreas        []string
	CategoryOverrides map[string][]string
}

// Run performs one adaptive review. Provider failures degrade to mock
// feedback rather than failing the run; bookkeeping errors are
// reported on stderr but only history persistence is fatal.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()

	diff := in.Diff
	if e.RedactSecrets {
		diff = redact.Secrets(diff)
	}
	diff = TruncateDiff(diff, e.MaxDiffChars)
	in.Diff = diff

	entries := e.Store.Load()
	settings := adaptive.Analyze(entries)

	if e.Log != nil {
		e.Log.AppendDecision(settings)
		if err := e.Log.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] saving adaptive log: %v\n", err)
		}
	}

	category := CategorizeWith(in.Title, in.Body, diff, e.CategoryOverrides)
	prompt := BuildPrompt(in, category, settings, e.Weights)
	if len(e.FocusAreas) > 0 {
		prompt += "\nAdditional focus areas: " + strings.Join(e.FocusAreas, ", ") + "\n"
	}

	result := &Result{
		RunID:      uuid.NewString(),
		Category:   category,
		Prediction: Predict(diff),
		Settings:   settings,
	}

	feedback, tokens, mode := e.requestFeedback(ctx, prompt)
	result.Mode = mode
	result.Feedback = feedback
	result.TokensUsed = tokens
	result.Analysis = AnalyzeFeedbackWith(feedback, e.ExtraRiskTerms)

	if err := e.writeFeedback(feedback); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] %v\n", err)
	}

	entry := history.NewEntry(
		in.PRNumber, in.Title, category,
		result.Analysis.PriorityScore, result.Analysis.HighRisk,
		preview(diff, 1000),
		map[string]string{
			"mode":          mode,
			"adaptive_tone": settings.Tone,
		},
	)
	metrics, replaced, err := e.Store.Upsert(entry)
	if err != nil {
		return nil, fmt.Errorf("updating review history: %w", err)
	}
	if replaced {
		fmt.Fprintf(os.Stderr, "[INFO] replaced duplicate history entry (pr=%s)\n", in.PRNumber)
	}
	result.Metrics = metrics

	if e.Log != nil {
		e.Log.AppendRun(in.PRNumber, result.Analysis.PriorityScore, result.Analysis.HighRisk, category, settings)
		if err := e.Log.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] saving adaptive log: %v\n", err)
		}
	}

	if err := e.writeMetadata(result, true); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] %v\n", err)
	}

	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

func (e *Engine) requestFeedback(ctx context.Context, prompt string) (feedback string, tokens int, mode string) {
	if e.Provider == nil {
		return MockFeedback(), 0, ModeMock
	}
	resp, err := e.Provider.Review(ctx, providers.ReviewRequest{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   prompt,
		MaxTokens:    8192,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] provider %s failed, falling back to mock feedback: %v\n", e.Provider.Name(), err)
		return MockFeedback(), 0, ModeMock
	}
	if resp.Content == "" {
		return MockFeedback(), resp.TokensUsed, ModeMock
	}
	return resp.Content, resp.TokensUsed, ModeLive
}

func (e *Engine) writeFeedback(feedback string) error {
	path := e.FeedbackPath
	if path == "" {
		path = DefaultFeedbackPath
	}
	if err := os.WriteFile(path, []byte(feedback), 0o644); err != nil {
		return fmt.Errorf("saving feedback to %s: %w", path, err)
	}
	return nil
}

func (e *Engine) writeMetadata(r *Result, success bool) error {
	path := e.MetadataPath
	if path == "" {
		path = DefaultMetadataPath
	}
	feedbackPath := e.FeedbackPath
	if feedbackPath == "" {
		feedbackPath = DefaultFeedbackPath
	}
	meta := Metadata{
		Mode:         r.Mode,
		Success:      success,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		FeedbackFile: feedbackPath,
		RunID:        r.RunID,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving metadata to %s: %w", path, err)
	}
	return nil
}

// CommentBody formats the PR comment posted after a run.
func CommentBody(r *Result) string {
	return fmt.Sprintf("### Adaptive AI PR Review\n\n%s\n\n**Priority Score:** %s/100\n**Adaptive Tone:** %s - %s",
		r.Feedback, strconv.Itoa(r.Analysis.PriorityScore), r.Settings.Tone, r.Settings.TrendSummary)
}

func preview(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
