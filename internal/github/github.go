package github

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client provides access to the GitHub API for a single repository.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewClient creates a GitHub client for owner/repo. Requires the
// GITHUB_TOKEN env var. GITHUB_API_URL switches to an enterprise host.
func NewClient(ctx context.Context, owner, repo string) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpCli := oauth2.NewClient(ctx, ts)

	client := gh.NewClient(httpCli)
	if apiURL := os.Getenv("GITHUB_API_URL"); apiURL != "" && !strings.Contains(apiURL, "api.github.com") {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise API URL: %w", err)
		}
	}

	return &Client{gh: client, owner: owner, repo: repo}, nil
}

// PullRequest is the subset of PR metadata a review run needs.
type PullRequest struct {
	Number    int
	Title     string
	Body      string
	Labels    []string
	Additions int
	Deletions int
}

// GetPullRequest fetches PR metadata.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR #%d in %s/%s: %w", number, c.owner, c.repo, err)
	}
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}
	return &PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		Labels:    labels,
		Additions: pr.GetAdditions(),
		Deletions: pr.GetDeletions(),
	}, nil
}

// GetPRDiff fetches the unified diff for a pull request.
func (c *Client) GetPRDiff(ctx context.Context, number int) (string, error) {
	diff, _, err := c.gh.PullRequests.GetRaw(ctx, c.owner, c.repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff for PR #%d: %w", number, err)
	}
	return diff, nil
}

// GetPRFiles fetches the list of files changed in a pull request.
func (c *Client) GetPRFiles(ctx context.Context, number int) ([]string, error) {
	opt := &gh.ListOptions{PerPage: 100}
	var names []string
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opt)
		if err != nil {
			return nil, fmt.Errorf("fetching files for PR #%d: %w", number, err)
		}
		for _, f := range files {
			names = append(names, f.GetFilename())
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return names, nil
}

// CreateIssueComment posts a comment on the PR conversation.
func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("posting comment on PR #%d: %w", number, err)
	}
	return nil
}

// VerifyToken checks that the token works and returns the login it
// authenticates as.
func (c *Client) VerifyToken(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("verifying token: %w", err)
	}
	return user.GetLogin(), nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from GITHUB_REPOSITORY when set (the
// Actions environment) and falls back to the git remote origin URL.
func DetectRepo() (owner, repo string, err error) {
	if env := os.Getenv("GITHUB_REPOSITORY"); env != "" {
		parts := strings.SplitN(env, "/", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
	}
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	url := strings.TrimSpace(string(out))
	return ParseRemoteURL(url)
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	// Strip .git suffix
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
