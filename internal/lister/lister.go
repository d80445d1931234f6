package lister

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
)

// DefaultLimit is the maximum number of repositories fetched when none is configured
const DefaultLimit = 1000

// Lister defines the interface for enumerating the caller's remote repositories
type Lister interface {
	// List returns the accessible repositories, filtered by opts, in the
	// order the platform reported them
	List(ctx context.Context, opts Options) ([]domain.RemoteRepo, error)
}

// Options controls which repositories List returns
type Options struct {
	Owner      string   // user or organization; empty means the authenticated user
	Limit      int      // maximum repositories fetched before filtering
	NoArchived bool     // drop archived repositories
	Exclude    []string // glob patterns on the short name
	Only       []string // glob patterns on the short name; empty keeps all
}

// ValidatePatterns reports the first malformed glob pattern
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := path.Match(globPattern(p), ""); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// SplitPatterns splits a comma-separated pattern list, dropping blanks
func SplitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Apply filters repos by archived status and by the include/exclude
// patterns, matched against the short name. Order is preserved.
func Apply(repos []domain.RemoteRepo, opts Options) []domain.RemoteRepo {
	var out []domain.RemoteRepo
	for _, r := range repos {
		if opts.NoArchived && r.IsArchived {
			continue
		}
		name := r.ShortName()
		if len(opts.Only) > 0 && !matchAny(opts.Only, name) {
			continue
		}
		if matchAny(opts.Exclude, name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(globPattern(strings.TrimSpace(p)), name); err == nil && ok {
			return true
		}
	}
	return false
}

// globPattern rewrites the shell-style negated class [!...] into the
// [^...] form path.Match understands
func globPattern(p string) string {
	return strings.ReplaceAll(p, "[!", "[^")
}

// ShortNames returns the set of short names in repos
func ShortNames(repos []domain.RemoteRepo) map[string]bool {
	names := make(map[string]bool, len(repos))
	for _, r := range repos {
		names[r.ShortName()] = true
	}
	return names
}
