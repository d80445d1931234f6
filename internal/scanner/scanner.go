// Package scanner finds the version-controlled working copies directly under
// a destination directory.
package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
)

// Scan returns the immediate subdirectories of dir that contain a .git
// directory, sorted by name. A directory that cannot be listed yields an
// empty result rather than an error.
func Scan(dir string) []domain.WorkingCopy {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var copies []domain.WorkingCopy
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !isDir(entry, path) {
			continue
		}
		if !git.IsWorkingCopy(path) {
			continue
		}
		copies = append(copies, domain.WorkingCopy{Name: entry.Name(), Path: path})
	}

	sort.Slice(copies, func(i, j int) bool { return copies[i].Name < copies[j].Name })
	return copies
}

// isDir follows symlinks so a linked checkout still counts
func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Filter keeps the working copies whose name is in names
func Filter(copies []domain.WorkingCopy, names map[string]bool) []domain.WorkingCopy {
	var out []domain.WorkingCopy
	for _, wc := range copies {
		if names[wc.Name] {
			out = append(out, wc)
		}
	}
	return out
}
