// Package reconcile partitions the remote repository list against the local
// destination directory.
package reconcile

import (
	"path/filepath"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/scanner"
)

// PullTarget is a remote repository with an existing local working copy
type PullTarget struct {
	Repo domain.RemoteRepo
	Path string
}

// Collision records a remote repository dropped because an earlier listed
// repository already claimed the same short name
type Collision struct {
	Name    string
	Kept    domain.RemoteRepo
	Dropped domain.RemoteRepo
}

// Plan is the partition of one run's remote repositories. A short name
// appears in at most one of ToClone and ToPull.
type Plan struct {
	ToClone    []domain.RemoteRepo
	ToPull     []PullTarget
	Collisions []Collision
}

// Reconcile classifies each remote repository as needing a clone (no working
// copy named after its short name under dest) or a pull. When two
// repositories share a short name the first listed one is classified and
// the others are returned as collisions. The filesystem is only read; an
// unreadable dest classifies everything as clone.
func Reconcile(repos []domain.RemoteRepo, dest string) Plan {
	local := make(map[string]string)
	for _, wc := range scanner.Scan(dest) {
		local[wc.Name] = wc.Path
	}

	kept, collisions := Dedupe(repos)
	plan := Plan{Collisions: collisions}
	for _, repo := range kept {
		if path, ok := local[repo.ShortName()]; ok {
			plan.ToPull = append(plan.ToPull, PullTarget{Repo: repo, Path: path})
			continue
		}
		plan.ToClone = append(plan.ToClone, repo)
	}
	return plan
}

// Dedupe keeps the first listed repository per short name and reports the
// rest as collisions. Order is preserved.
func Dedupe(repos []domain.RemoteRepo) ([]domain.RemoteRepo, []Collision) {
	seen := make(map[string]domain.RemoteRepo, len(repos))
	var (
		kept       []domain.RemoteRepo
		collisions []Collision
	)
	for _, repo := range repos {
		name := repo.ShortName()
		if first, ok := seen[name]; ok {
			collisions = append(collisions, Collision{Name: name, Kept: first, Dropped: repo})
			continue
		}
		seen[name] = repo
		kept = append(kept, repo)
	}
	return kept, collisions
}

// TargetPath returns where repo is cloned under dest
func TargetPath(dest string, repo domain.RemoteRepo) string {
	return filepath.Join(dest, repo.ShortName())
}
