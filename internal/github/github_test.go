package github

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gh "github.com/google/go-github/v68/github"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ghc := gh.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	ghc.BaseURL = base
	return &Client{gh: ghc, owner: "owner", repo: "repo"}, srv
}

func TestGetPullRequest(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"number": 42,
			"title": "Fix race in store",
			"body": "Serializes writes.",
			"labels": [{"name": "bug"}, {"name": "storage"}],
			"additions": 10,
			"deletions": 3
		}`))
	}))

	pr, err := c.GetPullRequest(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPullRequest error: %v", err)
	}
	if pr.Number != 42 || pr.Title != "Fix race in store" {
		t.Errorf("pr = %+v", pr)
	}
	if len(pr.Labels) != 2 || pr.Labels[0] != "bug" {
		t.Errorf("labels = %v", pr.Labels)
	}
	if pr.Additions != 10 || pr.Deletions != 3 {
		t.Errorf("churn = +%d -%d", pr.Additions, pr.Deletions)
	}
}

func TestGetPullRequest_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))

	if _, err := c.GetPullRequest(context.Background(), 99); err == nil {
		t.Fatal("expected error for missing PR")
	}
}

func TestGetPRDiff(t *testing.T) {
	const diff = "diff --git a/file.go b/file.go\n"
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); !strings.Contains(accept, "diff") {
			t.Errorf("Accept = %q, want diff media type", accept)
		}
		w.Write([]byte(diff))
	}))

	got, err := c.GetPRDiff(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPRDiff error: %v", err)
	}
	if got != diff {
		t.Errorf("diff = %q", got)
	}
}

func TestGetPRFiles(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/42/files" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"filename":"main.go"},{"filename":"util.go"}]`))
	}))

	files, err := c.GetPRFiles(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPRFiles error: %v", err)
	}
	if len(files) != 2 || files[0] != "main.go" || files[1] != "util.go" {
		t.Errorf("files = %v", files)
	}
}

func TestCreateIssueComment(t *testing.T) {
	var gotBody string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/repos/owner/repo/issues/42/comments" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(201)
		w.Write([]byte(`{"id":1}`))
	}))

	err := c.CreateIssueComment(context.Background(), 42, "### Adaptive AI PR Review")
	if err != nil {
		t.Fatalf("CreateIssueComment error: %v", err)
	}
	if !strings.Contains(gotBody, "Adaptive AI PR Review") {
		t.Errorf("posted body = %q", gotBody)
	}
}

func TestVerifyToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"login":"reviewer-bot"}`))
	}))

	login, err := c.VerifyToken(context.Background())
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if login != "reviewer-bot" {
		t.Errorf("login = %q", login)
	}
}

func TestDetectRepo_ActionsEnv(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "dshills/reviewloop")
	owner, repo, err := DetectRepo()
	if err != nil {
		t.Fatal(err)
	}
	if owner != "dshills" || repo != "reviewloop" {
		t.Errorf("DetectRepo = %s/%s", owner, repo)
	}
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "HTTPS",
			url:       "https://github.com/dshills/reviewloop.git",
			wantOwner: "dshills",
			wantRepo:  "reviewloop",
		},
		{
			name:      "HTTPS no .git",
			url:       "https://github.com/dshills/reviewloop",
			wantOwner: "dshills",
			wantRepo:  "reviewloop",
		},
		{
			name:      "SSH",
			url:       "git@github.com:dshills/reviewloop.git",
			wantOwner: "dshills",
			wantRepo:  "reviewloop",
		},
		{
			name:      "SSH no .git",
			url:       "git@github.com:dshills/reviewloop",
			wantOwner: "dshills",
			wantRepo:  "reviewloop",
		},
		{
			name:    "invalid",
			url:     "not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo = %q, want %q", repo, tt.wantRepo)
			}
		})
	}
}
