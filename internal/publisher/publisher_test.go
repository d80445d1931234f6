package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/hosting"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/runner/runnertest"
)

var runDate = time.Date(2024, 3, 7, 23, 30, 0, 0, time.UTC)

// fakeRepo simulates the parts of a working copy the publish sequence touches
type fakeRepo struct {
	mu          sync.Mutex
	dirty       bool
	ignoredOnly bool // add -A stages nothing
	branches    map[string]bool
}

func (r *fakeRepo) install(f *runnertest.Fake) *runnertest.Fake {
	return f.
		On([]string{"git", "status", "--porcelain"}, func(runner.Command) (runner.Result, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.dirty {
				return runner.Result{Stdout: " M README.md\n?? notes.txt\n"}, nil
			}
			return runner.Result{}, nil
		}).
		On([]string{"git", "rev-parse", "--verify"}, func(cmd runner.Command) (runner.Result, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			ref := cmd.Args[len(cmd.Args)-1]
			if r.branches[ref[len("refs/heads/"):]] {
				return runner.Result{Stdout: "abc123\n"}, nil
			}
			return runner.Result{ExitCode: 1}, nil
		}).
		On([]string{"git", "checkout"}, func(cmd runner.Command) (runner.Result, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.branches == nil {
				r.branches = map[string]bool{}
			}
			r.branches[cmd.Args[len(cmd.Args)-1]] = true
			return runner.Result{}, nil
		}).
		On([]string{"git", "add", "-A"}, func(runner.Command) (runner.Result, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.ignoredOnly {
				r.dirty = false
			}
			return runner.Result{}, nil
		}).
		On([]string{"git", "commit"}, func(runner.Command) (runner.Result, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dirty = false
			return runner.Result{}, nil
		})
}

func newPublisher(f *runnertest.Fake, suffix string) *Publisher {
	return New(git.New(f), hosting.NewGHReviewer(f), nil, Options{DeviceSuffix: suffix, Now: runDate})
}

var wc = domain.WorkingCopy{Name: "app", Path: "/src/app"}

func TestPublishCleanTree(t *testing.T) {
	repo := &fakeRepo{}
	fake := repo.install(runnertest.New())

	out := newPublisher(fake, "").Publish(context.Background(), wc)

	assert.Equal(t, domain.NoChanges{Repo: "app"}, out)
	assert.Equal(t, []string{"git status --porcelain"}, fake.CallLines())
}

func TestPublishCreatesBranchAndRequestsReview(t *testing.T) {
	repo := &fakeRepo{dirty: true}
	fake := runnertest.New().On([]string{"gh", "pr", "create"}, runnertest.Stdout("https://github.com/me/app/pull/12\n"))
	repo.install(fake)

	out := newPublisher(fake, "dev-1").Publish(context.Background(), wc)

	assert.Equal(t, domain.CommittedAndRequested{
		Repo:      "app",
		Branch:    "feature/2024-03-07-dev-1",
		ReviewURL: "https://github.com/me/app/pull/12",
	}, out)
	assert.Equal(t, []string{
		"git status --porcelain",
		"git rev-parse --verify --quiet refs/heads/feature/2024-03-07-dev-1",
		"git checkout -b feature/2024-03-07-dev-1",
		"git add -A",
		"git status --porcelain",
		"git commit -m Auto-sync from repo-sync (2024-03-07)",
		"git push -u origin feature/2024-03-07-dev-1",
		"gh pr create --base main --head feature/2024-03-07-dev-1 --title Auto-sync 2024-03-07 --body Automated sync from repo-sync.",
	}, fake.CallLines())

	for _, c := range fake.Calls() {
		assert.Equal(t, "/src/app", runnertest.DirOf(c))
	}
}

func TestPublishReusesExistingBranch(t *testing.T) {
	repo := &fakeRepo{dirty: true, branches: map[string]bool{"feature/2024-03-07": true}}
	fake := repo.install(runnertest.New())

	newPublisher(fake, "").Publish(context.Background(), wc)

	assert.Contains(t, fake.CallLines(), "git checkout feature/2024-03-07")
	assert.NotContains(t, fake.CallLines(), "git checkout -b feature/2024-03-07")
}

func TestPublishOnlyIgnoredChanges(t *testing.T) {
	repo := &fakeRepo{dirty: true, ignoredOnly: true}
	fake := repo.install(runnertest.New())

	out := newPublisher(fake, "").Publish(context.Background(), wc)

	assert.Equal(t, domain.NoChanges{Repo: "app"}, out)
	for _, line := range fake.CallLines() {
		assert.NotContains(t, line, "commit")
	}
}

func TestPublishIsIdempotentWithinADay(t *testing.T) {
	repo := &fakeRepo{dirty: true}
	fake := runnertest.New().On([]string{"gh", "pr", "create"}, runnertest.Stdout("https://github.com/me/app/pull/1\n"))
	repo.install(fake)
	p := newPublisher(fake, "")

	first := p.Publish(context.Background(), wc)
	second := p.Publish(context.Background(), wc)

	assert.IsType(t, domain.CommittedAndRequested{}, first)
	assert.Equal(t, domain.NoChanges{Repo: "app"}, second)
}

func TestPublishReviewAlreadyExists(t *testing.T) {
	repo := &fakeRepo{dirty: true, branches: map[string]bool{"feature/2024-03-07": true}}
	fake := runnertest.New().On([]string{"gh", "pr", "create"},
		runnertest.Exit(1, "a pull request for branch \"feature/2024-03-07\" into branch \"main\" already exists"))
	repo.install(fake)

	out := newPublisher(fake, "").Publish(context.Background(), wc)

	assert.Equal(t, domain.Committed{Repo: "app", Branch: "feature/2024-03-07"}, out)
}

func TestPublishFailures(t *testing.T) {
	tests := []struct {
		name      string
		failOn    []string
		stage     domain.PublishStage
		didCommit bool
	}{
		{"status", []string{"git", "status"}, domain.StageStatus, false},
		{"checkout", []string{"git", "checkout"}, domain.StageBranch, false},
		{"add", []string{"git", "add"}, domain.StageStage, false},
		{"commit", []string{"git", "commit"}, domain.StageCommit, false},
		{"push", []string{"git", "push"}, domain.StagePush, false},
		{"review", []string{"gh", "pr", "create"}, domain.StageReview, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{dirty: true}
			fake := runnertest.New().On(tt.failOn, runnertest.Exit(128, "fatal: something broke\nhint: details"))
			repo.install(fake)

			out := newPublisher(fake, "").Publish(context.Background(), wc)

			failed, ok := out.(domain.PublishFailed)
			require.True(t, ok, "got %v", out)
			assert.Equal(t, tt.stage, failed.Stage)
			assert.Equal(t, tt.didCommit, failed.DidCommit)
			assert.Equal(t, "fatal: something broke", failed.Message)
			assert.Equal(t, "feature/2024-03-07", failed.Branch)
		})
	}
}

func TestPublishStopsAfterFailure(t *testing.T) {
	repo := &fakeRepo{dirty: true}
	fake := runnertest.New().On([]string{"git", "commit"}, runnertest.Exit(1, "error: commit hook rejected"))
	repo.install(fake)

	newPublisher(fake, "").Publish(context.Background(), wc)

	for _, line := range fake.CallLines() {
		assert.NotContains(t, line, "push")
		assert.NotContains(t, line, "gh pr")
	}
}
