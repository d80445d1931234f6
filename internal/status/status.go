// Package status reports branch, ahead/behind and dirty state of working copies.
package status

import (
	"context"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/executor"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
)

const maxErrorLength = 200

// Reporter builds status snapshots. Query failures degrade to placeholder
// values instead of aborting the report.
type Reporter struct {
	git  *git.Client
	jobs int
}

// NewReporter creates a reporter that queries up to jobs working copies at once
func NewReporter(g *git.Client, jobs int) *Reporter {
	return &Reporter{git: g, jobs: jobs}
}

// Report returns one snapshot per working copy in input order. When
// requireBranch is set, copies on another branch are flagged.
func (r *Reporter) Report(ctx context.Context, copies []domain.WorkingCopy, requireBranch string) []domain.RepoStatus {
	type indexed struct {
		i int
		s domain.RepoStatus
	}
	units := make([]executor.Unit[indexed], len(copies))
	for i, wc := range copies {
		i, wc := i, wc
		units[i] = func(ctx context.Context) indexed {
			return indexed{i: i, s: r.snapshot(ctx, wc, requireBranch)}
		}
	}

	out := make([]domain.RepoStatus, len(copies))
	for _, res := range executor.Run(ctx, r.jobs, units) {
		out[res.i] = res.s
	}
	return out
}

func (r *Reporter) snapshot(ctx context.Context, wc domain.WorkingCopy, requireBranch string) domain.RepoStatus {
	st := domain.RepoStatus{Name: wc.Name, Path: wc.Path, Branch: domain.UnknownBranch}

	if branch, err := r.git.CurrentBranch(ctx, wc.Path); err == nil && branch != "" {
		st.Branch = branch
	} else if err != nil {
		st.Error = git.ErrorMessage(err, maxErrorLength)
	}

	// no upstream is the common failure here and reads as 0/0
	if ahead, behind, err := r.git.AheadBehind(ctx, wc.Path); err == nil {
		st.Ahead, st.Behind = ahead, behind
	}

	dirty, err := r.git.IsDirty(ctx, wc.Path)
	if err == nil {
		st.Dirty = dirty
	} else if st.Error == "" {
		st.Error = git.ErrorMessage(err, maxErrorLength)
	}

	st.WrongBranch = requireBranch != "" && st.Branch != requireBranch
	return st
}
