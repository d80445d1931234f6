package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/runner/runnertest"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantError bool
	}{
		{name: "HTTPS URL", url: "https://github.com/owner/repo.git", wantOwner: "owner", wantRepo: "repo"},
		{name: "SSH URL", url: "git@github.com:owner/repo.git", wantOwner: "owner", wantRepo: "repo"},
		{name: "Simple URL", url: "https://github.com/owner/repo", wantOwner: "owner", wantRepo: "repo"},
		{name: "Trailing newline", url: "https://github.com/owner/repo\n", wantOwner: "owner", wantRepo: "repo"},
		{name: "Invalid URL", url: "not-a-url", wantError: true},
		{name: "Invalid Path", url: "https://github.com/invalid", wantError: true},
		{name: "Invalid SSH", url: "git@github.com:only", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestGHReviewer(t *testing.T) {
	req := ReviewRequest{Base: "main", Head: "feature/2024-03-07-laptop", Title: "Auto-sync 2024-03-07", Body: "Automated sync from repo-sync."}

	t.Run("created", func(t *testing.T) {
		fake := runnertest.New().On([]string{"gh", "pr", "create"},
			runnertest.Stdout("Creating pull request...\nhttps://github.com/me/app/pull/7\n"))

		res, err := NewGHReviewer(fake).RequestReview(context.Background(), "/src/app", req)
		require.NoError(t, err)
		assert.Equal(t, ReviewResult{URL: "https://github.com/me/app/pull/7"}, res)

		calls := fake.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "/src/app", calls[0].Dir)
		assert.Equal(t, []string{"pr", "create", "--base", "main", "--head", "feature/2024-03-07-laptop",
			"--title", "Auto-sync 2024-03-07", "--body", "Automated sync from repo-sync."}, calls[0].Args)
	})

	t.Run("already exists", func(t *testing.T) {
		fake := runnertest.New().On([]string{"gh", "pr", "create"}, runnertest.Exit(1,
			"a pull request for branch \"feature/x\" into branch \"main\" already exists:\nhttps://github.com/me/app/pull/3"))

		res, err := NewGHReviewer(fake).RequestReview(context.Background(), "/src/app", req)
		require.NoError(t, err)
		assert.True(t, res.AlreadyExists)
		assert.Equal(t, "https://github.com/me/app/pull/3", res.URL)
	})

	t.Run("failed", func(t *testing.T) {
		fake := runnertest.New().On([]string{"gh", "pr", "create"}, runnertest.Exit(1, "GraphQL: No commits between main and feature/x"))

		_, err := NewGHReviewer(fake).RequestReview(context.Background(), "/src/app", req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No commits between")
	})

	t.Run("gh missing", func(t *testing.T) {
		fake := runnertest.New().On([]string{"gh"}, func(runner.Command) (runner.Result, error) {
			return runner.Result{}, fmt.Errorf("executable file not found")
		})

		_, err := NewGHReviewer(fake).RequestReview(context.Background(), "/src/app", req)
		assert.Error(t, err)
	})
}

type staticRemote string

func (s staticRemote) RemoteURL(context.Context, string) (string, error) {
	return string(s), nil
}

func newTestReviewer(t *testing.T, mux *http.ServeMux) Reviewer {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return NewGitHubReviewerWithClient(client, staticRemote("git@github.com:me/app.git"))
}

func TestGitHubReviewerCreates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/me/app/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number":9,"html_url":"https://github.com/me/app/pull/9"}`)
	})

	res, err := newTestReviewer(t, mux).RequestReview(context.Background(), "/src/app",
		ReviewRequest{Base: "main", Head: "feature/2024-03-07", Title: "t", Body: "b"})

	require.NoError(t, err)
	assert.Equal(t, ReviewResult{URL: "https://github.com/me/app/pull/9"}, res)
}

func TestGitHubReviewerAlreadyExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/me/app/pulls", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message":"Validation Failed","errors":[{"resource":"PullRequest","code":"custom","message":"A pull request already exists for me:feature/2024-03-07."}]}`)
			return
		}
		assert.Equal(t, "me:feature/2024-03-07", r.URL.Query().Get("head"))
		fmt.Fprint(w, `[{"number":4,"html_url":"https://github.com/me/app/pull/4"}]`)
	})

	res, err := newTestReviewer(t, mux).RequestReview(context.Background(), "/src/app",
		ReviewRequest{Base: "main", Head: "feature/2024-03-07"})

	require.NoError(t, err)
	assert.Equal(t, ReviewResult{URL: "https://github.com/me/app/pull/4", AlreadyExists: true}, res)
}

func TestGitHubReviewerFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/me/app/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Resource not accessible by integration"}`)
	})

	_, err := newTestReviewer(t, mux).RequestReview(context.Background(), "/src/app", ReviewRequest{Base: "main", Head: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create PR")
}
