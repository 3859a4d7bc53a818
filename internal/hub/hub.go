package hub

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/reviewloop/internal/redact"
)

// WeightsFile is the artifact exchanged with the hub repository.
const WeightsFile = "adaptive_network_weights.json"

// Sync moves learning artifacts between the local workspace and a
// shared hub repository using the git CLI.
type Sync struct {
	RepoURL string
	Branch  string
	Token   string

	// Stderr receives progress output. Defaults to os.Stderr.
	Stderr io.Writer
}

// New returns a Sync for the given hub repository. An empty branch
// defaults to main.
func New(repoURL, branch, token string) *Sync {
	if branch == "" {
		branch = "main"
	}
	return &Sync{RepoURL: repoURL, Branch: branch, Token: token, Stderr: os.Stderr}
}

// Pull clones the hub repository and copies the shared network weights
// into destDir. Returns the path of the copied file, or empty string if
// the hub carries no weights yet.
func (s *Sync) Pull(destDir string) (string, error) {
	if s.RepoURL == "" {
		return "", fmt.Errorf("hub repository URL is not configured")
	}
	tmp, err := os.MkdirTemp("", "reviewloop-hub-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	clone := filepath.Join(tmp, "hub")
	if err := s.runGit("", "clone", "--depth", "1", "--branch", s.Branch, s.authURL(), clone); err != nil {
		return "", fmt.Errorf("cloning hub: %w", err)
	}

	src := filepath.Join(clone, WeightsFile)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		s.infof("hub has no %s yet", WeightsFile)
		return "", nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating dest dir: %w", err)
	}
	dest := filepath.Join(destDir, WeightsFile)
	if err := copyFile(src, dest); err != nil {
		return "", fmt.Errorf("copying weights: %w", err)
	}
	s.infof("pulled %s from hub", WeightsFile)
	return dest, nil
}

// Push clones the hub repository, copies the given artifact files into
// it, and commits and pushes the result. Missing artifacts are skipped
// with a warning. Push is a no-op when nothing changed.
func (s *Sync) Push(artifacts []string, message string) error {
	if s.RepoURL == "" {
		return fmt.Errorf("hub repository URL is not configured")
	}
	if message == "" {
		message = "Update shared review knowledge"
	}
	tmp, err := os.MkdirTemp("", "reviewloop-hub-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	clone := filepath.Join(tmp, "hub")
	if err := s.runGit("", "clone", s.authURL(), clone); err != nil {
		return fmt.Errorf("cloning hub: %w", err)
	}
	if err := s.runGit(clone, "checkout", "-B", s.Branch); err != nil {
		return fmt.Errorf("switching to branch %s: %w", s.Branch, err)
	}

	copied := 0
	for _, a := range artifacts {
		if _, err := os.Stat(a); err != nil {
			s.warnf("artifact %s not found, skipping", a)
			continue
		}
		if err := copyFile(a, filepath.Join(clone, filepath.Base(a))); err != nil {
			return fmt.Errorf("copying %s: %w", a, err)
		}
		copied++
	}
	if copied == 0 {
		s.infof("no artifacts to push")
		return nil
	}

	if err := s.runGit(clone, "add", "-A"); err != nil {
		return fmt.Errorf("staging artifacts: %w", err)
	}
	if err := s.runGit(clone, "-c", "user.name=reviewloop", "-c", "user.email=reviewloop@users.noreply.github.com",
		"commit", "-m", message); err != nil {
		// Hub already carries identical artifacts.
		s.infof("hub already up to date")
		return nil
	}
	if err := s.runGit(clone, "push", "origin", s.Branch); err != nil {
		return fmt.Errorf("pushing to hub: %w", err)
	}
	s.infof("pushed %d artifact(s) to hub branch %s", copied, s.Branch)
	return nil
}

// authURL embeds the token in an https remote URL so CI can push
// without credential helpers. Non-https URLs pass through unchanged.
func (s *Sync) authURL() string {
	if s.Token == "" || !strings.HasPrefix(s.RepoURL, "https://") {
		return s.RepoURL
	}
	rest := strings.TrimPrefix(s.RepoURL, "https://")
	if at := strings.Index(rest, "@"); at >= 0 {
		rest = rest[at+1:] // replace any existing credentials
	}
	return "https://x-access-token:" + s.Token + "@" + rest
}

// Redact scrubs the token and any embedded URL credentials from a
// string so they never reach logs or error messages. The exact token
// is replaced first; the pattern scan catches credentials git itself
// echoes back, such as the tokened clone URL.
func (s *Sync) Redact(text string) string {
	if s.Token != "" {
		text = strings.ReplaceAll(text, s.Token, "***")
	}
	return redact.Secrets(text)
}

func (s *Sync) runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %s: %s", s.Redact(strings.Join(args, " ")), err, s.Redact(string(out)))
	}
	return nil
}

func (s *Sync) infof(format string, args ...any) {
	fmt.Fprintf(s.stderr(), "[INFO] "+format+"\n", args...)
}

func (s *Sync) warnf(format string, args ...any) {
	fmt.Fprintf(s.stderr(), "[WARN] "+format+"\n", args...)
}

func (s *Sync) stderr() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}
