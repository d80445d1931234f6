package status

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/runner/runnertest"
)

func inRepo(name string, prefix ...string) func(runner.Command) bool {
	return func(cmd runner.Command) bool {
		return runnertest.DirOf(cmd) == "/src/"+name && runnertest.HasPrefix(cmd, prefix...)
	}
}

func TestReport(t *testing.T) {
	fake := runnertest.New().
		// app: on main, 2 ahead 1 behind, dirty
		OnMatch(inRepo("app", "git", "rev-parse", "--abbrev-ref"), runnertest.Stdout("main\n")).
		OnMatch(inRepo("app", "git", "rev-list"), runnertest.Stdout("1\t2\n")).
		OnMatch(inRepo("app", "git", "status"), runnertest.Stdout(" M go.mod\n")).
		// lib: feature branch, no upstream, clean
		OnMatch(inRepo("lib", "git", "rev-parse", "--abbrev-ref"), runnertest.Stdout("feature/x\n")).
		OnMatch(inRepo("lib", "git", "rev-list"), runnertest.Exit(128, "fatal: no upstream configured for branch 'feature/x'")).
		// broken: every query fails
		OnMatch(inRepo("broken", "git"), runnertest.Exit(128, "fatal: not a git repository"))

	copies := []domain.WorkingCopy{
		{Name: "app", Path: "/src/app"},
		{Name: "lib", Path: "/src/lib"},
		{Name: "broken", Path: "/src/broken"},
	}

	got := NewReporter(git.New(fake), 4).Report(context.Background(), copies, "main")

	assert.Equal(t, []domain.RepoStatus{
		{Name: "app", Path: "/src/app", Branch: "main", Ahead: 2, Behind: 1, Dirty: true},
		{Name: "lib", Path: "/src/lib", Branch: "feature/x", WrongBranch: true},
		{Name: "broken", Path: "/src/broken", Branch: domain.UnknownBranch, WrongBranch: true, Error: "fatal: not a git repository"},
	}, got)
}

func TestReportWithoutRequiredBranch(t *testing.T) {
	fake := runnertest.New().On([]string{"git", "rev-parse"}, runnertest.Stdout("develop\n"))

	got := NewReporter(git.New(fake), 1).Report(context.Background(),
		[]domain.WorkingCopy{{Name: "app", Path: "/src/app"}}, "")

	assert.False(t, got[0].WrongBranch)
	assert.Equal(t, "develop", got[0].Branch)
	assert.Equal(t, 0, got[0].Ahead)
}

func TestReportEmpty(t *testing.T) {
	got := NewReporter(git.New(runnertest.New()), 2).Report(context.Background(), nil, "main")
	assert.Empty(t, got)
}

func TestReportTruncatesErrors(t *testing.T) {
	long := "fatal: " + strings.Repeat("x", 300)
	fake := runnertest.New().On([]string{"git"}, runnertest.Exit(128, long+"\nhint: second line"))

	got := NewReporter(git.New(fake), 1).Report(context.Background(),
		[]domain.WorkingCopy{{Name: "app", Path: "/src/app"}}, "")

	assert.Len(t, got[0].Error, maxErrorLength)
	assert.Equal(t, long[:maxErrorLength], got[0].Error)
}
