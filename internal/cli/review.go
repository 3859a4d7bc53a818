package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/cache"
	"github.com/dshills/reviewloop/internal/config"
	"github.com/dshills/reviewloop/internal/gitctx"
	"github.com/dshills/reviewloop/internal/github"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/dshills/reviewloop/internal/output"
	"github.com/dshills/reviewloop/internal/providers"
	"github.com/dshills/reviewloop/internal/redact"
	"github.com/dshills/reviewloop/internal/review"
	"github.com/spf13/cobra"
)

// Shared review flags
var (
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagMaxDiffChars int
	flagContextLines int
	flagFailOn       string
	flagNoRedact     bool
	flagNoPost       bool
	flagMock         bool
	flagDiffFile     string
	flagTitle        string
	flagOwner        string
	flagRepo         string
	flagMergeBase    bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, ollama, mock)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&flagMaxDiffChars, "max-diff-chars", 0, "Maximum diff size in characters before truncation")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "none", "Exit 1 threshold (none, high, any)")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagMock, "mock", false, "Skip the provider and use deterministic mock feedback")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagMaxDiffChars > 0 {
		m["maxDiffChars"] = fmt.Sprintf("%d", flagMaxDiffChars)
	}
	return m
}

// applyPolicy folds the repo policy file into the effective config.
func applyPolicy(cfg *config.Config, p review.Policy) {
	if p.Provider != "" {
		cfg.Provider = p.Provider
	}
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.MaxDiffChars > 0 {
		cfg.MaxDiffChars = p.MaxDiffChars
	}
	if p.PostComment != nil {
		cfg.PostComment = *p.PostComment
	}
}

// buildProvider creates the configured reviewer, wrapped with the
// response cache when enabled. Returns nil (mock mode) when the
// provider cannot be constructed, so CI runs without credentials still
// produce output.
func buildProvider(cfg config.Config) providers.Reviewer {
	if flagMock || cfg.Provider == "mock" {
		return nil
	}
	p, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] provider unavailable, falling back to mock feedback: %v\n", err)
		return nil
	}
	if cfg.Cache.Enabled {
		c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] opening cache: %v\n", err)
			return p
		}
		return &cachedReviewer{inner: p, cache: c, model: cfg.Model}
	}
	return p
}

// cachedReviewer checks the response cache before the provider and
// falls back to a stale entry when the provider fails.
type cachedReviewer struct {
	inner providers.Reviewer
	cache *cache.Cache
	model string
}

func (r *cachedReviewer) Name() string { return r.inner.Name() }

func (r *cachedReviewer) Review(ctx context.Context, req providers.ReviewRequest) (providers.ReviewResponse, error) {
	key := cache.BuildCacheKey(r.inner.Name(), r.model, req.SystemPrompt+"\n"+req.UserPrompt)
	if content, ok := r.cache.Get(key); ok {
		return providers.ReviewResponse{Content: content}, nil
	}
	resp, err := r.inner.Review(ctx, req)
	if err != nil {
		if content, ok := r.cache.GetStale(key); ok {
			fmt.Fprintf(os.Stderr, "[WARN] provider failed, using stale cached response: %v\n", err)
			return providers.ReviewResponse{Content: content}, nil
		}
		return providers.ReviewResponse{}, err
	}
	if resp.Content != "" {
		if err := r.cache.Put(key, resp.Content); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] caching response: %v\n", err)
		}
	}
	return resp, nil
}

func buildEngine(cfg config.Config, policy review.Policy) *review.Engine {
	return &review.Engine{
		Provider:          buildProvider(cfg),
		Store:             history.NewStore(cfg.HistoryPath, cfg.MaxHistory),
		Log:               adaptive.OpenLog(cfg.AdaptiveLog, cfg.MaxAdaptiveLog),
		Weights:           adaptive.LoadWeights(adaptive.DefaultWeightsPath),
		RedactSecrets:     cfg.Privacy.RedactSecrets && !flagNoRedact,
		MaxDiffChars:      cfg.MaxDiffChars,
		ExtraRiskTerms:    policy.RiskTerms,
		FocusAreas:        policy.FocusAreas,
		CategoryOverrides: policy.Categories,
	}
}

// runReview executes the engine on the prepared input, writes output,
// and maps the outcome to an exit code. client may be nil for local
// diffs; the PR comment is best-effort.
func runReview(ctx context.Context, in review.Input, cfg config.Config, policy review.Policy, client *github.Client, prNumber int) {
	if flagNoRedact {
		fmt.Fprintln(os.Stderr, "[WARN] secret redaction is disabled")
	}

	engine := buildEngine(cfg, policy)
	result, err := engine.Run(ctx, in)
	if err != nil {
		if providers.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if err := output.WriteResult(result, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if client != nil && cfg.PostComment && !flagNoPost {
		if err := client.CreateIssueComment(ctx, prNumber, review.CommentBody(result)); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] posting PR comment: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "[INFO] posted review comment on PR #%d\n", prNumber)
		}
	}

	switch flagFailOn {
	case "high":
		if result.Analysis.HighRisk {
			exitCode = ExitFindings
		}
	case "any":
		if result.Analysis.IssueCount > 0 {
			exitCode = ExitFindings
		}
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request or local changes",
	Long:  "Review a pull request or local git changes with the adaptive engine. Use subcommands to specify what to review.",
}

var reviewPRCmd = &cobra.Command{
	Use:   "pr <number>",
	Short: "Review a pull request via the GitHub API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid PR number %q\n", args[0])
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		policy, err := review.LoadPolicy("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		applyPolicy(&cfg, policy)

		owner, repo := flagOwner, flagRepo
		if owner == "" || repo == "" {
			owner, repo, err = github.DetectRepo()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
		}

		ctx := context.Background()
		client, err := github.NewClient(ctx, owner, repo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}
		login, err := client.VerifyToken(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}
		fmt.Fprintf(os.Stderr, "[INFO] authenticated as %s\n", login)

		pr, err := client.GetPullRequest(ctx, number)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if policy.ShouldSkip(pr.Labels) {
			fmt.Fprintf(os.Stderr, "[INFO] PR #%d carries a skip label, not reviewing\n", number)
			return nil
		}

		diff, err := loadPRDiff(ctx, client, number)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		warnSensitivePaths(ctx, client, number, cfg.Privacy.RedactPaths)

		in := review.Input{
			Repo:     owner + "/" + repo,
			PRNumber: strconv.Itoa(number),
			Title:    pr.Title,
			Body:     pr.Body,
			Diff:     diff,
		}
		runReview(ctx, in, cfg, policy, client, number)
		return nil
	},
}

// loadPRDiff prefers a diff file dropped by the CI workflow over an
// extra API call.
func loadPRDiff(ctx context.Context, client *github.Client, number int) (string, error) {
	path := flagDiffFile
	if path == "" {
		if _, err := os.Stat("pr_diff.patch"); err == nil {
			path = "pr_diff.patch"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading diff file %s: %w", path, err)
		}
		return string(data), nil
	}
	return client.GetPRDiff(ctx, number)
}

// warnSensitivePaths flags PR files matching the privacy path patterns.
// Best-effort: listing failures are ignored.
func warnSensitivePaths(ctx context.Context, client *github.Client, number int, patterns []string) {
	if len(patterns) == 0 {
		return
	}
	files, err := client.GetPRFiles(ctx, number)
	if err != nil {
		return
	}
	for _, f := range files {
		if redact.ShouldRedactPath(f, patterns) {
			fmt.Fprintf(os.Stderr, "[WARN] PR touches sensitive path %s\n", f)
		}
	}
}

var reviewRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Review a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, ok := loadLocalConfig()
		if !ok {
			return nil
		}
		diff, err := gitctx.Range(args[0], flagMergeBase, diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(context.Background(), localInput(diff), cfg, policy, nil, 0)
		return nil
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, ok := loadLocalConfig()
		if !ok {
			return nil
		}
		diff, err := gitctx.Staged(diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(context.Background(), localInput(diff), cfg, policy, nil, 0)
		return nil
	},
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Review unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, ok := loadLocalConfig()
		if !ok {
			return nil
		}
		diff, err := gitctx.Unstaged(diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(context.Background(), localInput(diff), cfg, policy, nil, 0)
		return nil
	},
}

func loadLocalConfig() (config.Config, review.Policy, bool) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return config.Config{}, review.Policy{}, false
	}
	policy, err := review.LoadPolicy("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return config.Config{}, review.Policy{}, false
	}
	applyPolicy(&cfg, policy)
	return cfg, policy, true
}

func diffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{ContextLines: cfg.ContextLines}
	if flagContextLines > 0 {
		opts.ContextLines = flagContextLines
	}
	return opts
}

func localInput(diff gitctx.DiffResult) review.Input {
	title := flagTitle
	if title == "" {
		title = "Local diff (" + diff.Mode + ")"
	}
	return review.Input{
		Repo:     diff.Repo.Root,
		PRNumber: "0",
		Title:    title,
		Diff:     diff.Diff,
	}
}

func init() {
	reviewCmd.AddCommand(reviewPRCmd)
	reviewCmd.AddCommand(reviewRangeCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewUnstagedCmd)

	for _, cmd := range []*cobra.Command{
		reviewPRCmd,
		reviewRangeCmd,
		reviewStagedCmd,
		reviewUnstagedCmd,
	} {
		addReviewFlags(cmd)
	}

	// PR-specific flags
	reviewPRCmd.Flags().StringVar(&flagOwner, "owner", "", "Repository owner (default: detect from environment)")
	reviewPRCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository name (default: detect from environment)")
	reviewPRCmd.Flags().StringVar(&flagDiffFile, "diff-file", "", "Read the PR diff from a file instead of the API")
	reviewPRCmd.Flags().BoolVar(&flagNoPost, "no-post", false, "Do not post the review as a PR comment")

	// Local diff flags
	for _, cmd := range []*cobra.Command{reviewRangeCmd, reviewStagedCmd, reviewUnstagedCmd} {
		cmd.Flags().IntVar(&flagContextLines, "context-lines", 0, "Number of context lines in the diff")
		cmd.Flags().StringVar(&flagTitle, "title", "", "Title used for categorization")
	}
	reviewRangeCmd.Flags().BoolVar(&flagMergeBase, "merge-base", true, "Diff against the merge base for branch comparisons")
}
