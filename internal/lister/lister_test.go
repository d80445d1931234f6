package lister

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
)

func names(repos []domain.RemoteRepo) []string {
	var out []string
	for _, r := range repos {
		out = append(out, r.FullName)
	}
	return out
}

func TestApply(t *testing.T) {
	repos := []domain.RemoteRepo{
		{FullName: "me/my-app"},
		{FullName: "me/my-old", IsArchived: true},
		{FullName: "me/old-tool"},
		{FullName: "org/my-lib"},
		{FullName: "org/website"},
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"no filters", Options{}, []string{"me/my-app", "me/my-old", "me/old-tool", "org/my-lib", "org/website"}},
		{"no archived", Options{NoArchived: true}, []string{"me/my-app", "me/old-tool", "org/my-lib", "org/website"}},
		{"only", Options{Only: []string{"my-*"}}, []string{"me/my-app", "me/my-old", "org/my-lib"}},
		{"exclude", Options{Exclude: []string{"old-*", "web*"}}, []string{"me/my-app", "me/my-old", "org/my-lib"}},
		{"only and exclude", Options{Only: []string{"my-*"}, Exclude: []string{"*-old"}, NoArchived: true}, []string{"me/my-app", "org/my-lib"}},
		{"only matches nothing", Options{Only: []string{"zzz"}}, nil},
		{"negated class", Options{Only: []string{"[!m]*"}}, []string{"me/old-tool", "org/website"}},
		{"exclude negated class", Options{Exclude: []string{"[!o]*"}}, []string{"me/old-tool"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Apply(repos, tt.opts)))
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	assert.Equal(t, []string{"old-*", "deprecated-*"}, SplitPatterns(" old-* , ,deprecated-*"))
	assert.Nil(t, SplitPatterns(""))
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{"a*", "b?c"}))
	assert.Error(t, ValidatePatterns([]string{"ok", "[broken"}))
	assert.NoError(t, ValidatePatterns([]string{"[!a]*"}))
}

func TestShortNames(t *testing.T) {
	got := ShortNames([]domain.RemoteRepo{{FullName: "a/x"}, {FullName: "b/y"}})
	assert.Equal(t, map[string]bool{"x": true, "y": true}, got)
}
