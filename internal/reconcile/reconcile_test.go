package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
)

func repo(fullName string) domain.RemoteRepo {
	return domain.RemoteRepo{
		FullName: fullName,
		HTTPSURL: "https://github.com/" + fullName,
		SSHURL:   "git@github.com:" + fullName + ".git",
	}
}

func TestReconcileScenario(t *testing.T) {
	dest := t.TempDir()
	// repo1 exists but has no .git, so it is not a working copy
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "repo1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "repo2", ".git"), 0o755))

	plan := Reconcile([]domain.RemoteRepo{repo("a/repo1"), repo("a/repo2")}, dest)

	require.Len(t, plan.ToClone, 1)
	assert.Equal(t, "a/repo1", plan.ToClone[0].FullName)
	require.Len(t, plan.ToPull, 1)
	assert.Equal(t, "a/repo2", plan.ToPull[0].Repo.FullName)
	assert.Equal(t, filepath.Join(dest, "repo2"), plan.ToPull[0].Path)
	assert.Empty(t, plan.Collisions)
}

func TestReconcileUnreadableDestinationClonesAll(t *testing.T) {
	plan := Reconcile([]domain.RemoteRepo{repo("a/x"), repo("a/y")}, filepath.Join(t.TempDir(), "missing"))

	assert.Len(t, plan.ToClone, 2)
	assert.Empty(t, plan.ToPull)
}

func TestReconcileCollisionFirstListedWins(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "tools", ".git"), 0o755))

	plan := Reconcile([]domain.RemoteRepo{repo("alice/tools"), repo("bob/tools"), repo("bob/other")}, dest)

	require.Len(t, plan.ToPull, 1)
	assert.Equal(t, "alice/tools", plan.ToPull[0].Repo.FullName)
	require.Len(t, plan.Collisions, 1)
	assert.Equal(t, "tools", plan.Collisions[0].Name)
	assert.Equal(t, "alice/tools", plan.Collisions[0].Kept.FullName)
	assert.Equal(t, "bob/tools", plan.Collisions[0].Dropped.FullName)
	require.Len(t, plan.ToClone, 1)
	assert.Equal(t, "bob/other", plan.ToClone[0].FullName)
}

// For distinct short names, clone and pull partition the remote list exactly.
func TestReconcilePartitionProperty(t *testing.T) {
	for n := 0; n < 12; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			dest := t.TempDir()
			var repos []domain.RemoteRepo
			var want []string
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("r%02d", i)
				repos = append(repos, repo("o/"+name))
				want = append(want, name)
				if i%3 == 0 {
					require.NoError(t, os.MkdirAll(filepath.Join(dest, name, ".git"), 0o755))
				}
			}

			plan := Reconcile(repos, dest)

			var got []string
			cloneSet := map[string]bool{}
			for _, r := range plan.ToClone {
				got = append(got, r.ShortName())
				cloneSet[r.ShortName()] = true
			}
			for _, p := range plan.ToPull {
				got = append(got, p.Repo.ShortName())
				assert.False(t, cloneSet[p.Repo.ShortName()], "%s in both sets", p.Repo.ShortName())
			}
			sort.Strings(got)
			assert.Equal(t, want, got)
		})
	}
}

func TestTargetPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/dest", "repo"), TargetPath("/dest", repo("owner/repo")))
}
