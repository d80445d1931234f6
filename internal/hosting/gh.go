package hosting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

type ghReviewer struct {
	runner runner.Runner
}

// NewGHReviewer opens review requests with gh pr create
func NewGHReviewer(r runner.Runner) Reviewer {
	return &ghReviewer{runner: r}
}

func (g *ghReviewer) RequestReview(ctx context.Context, dir string, req ReviewRequest) (ReviewResult, error) {
	res, err := g.runner.Run(ctx, runner.Command{
		Dir:  dir,
		Name: "gh",
		Args: []string{"pr", "create", "--base", req.Base, "--head", req.Head, "--title", req.Title, "--body", req.Body},
	})
	if err != nil {
		return ReviewResult{}, fmt.Errorf("gh pr create: %w", err)
	}
	if !res.OK() {
		msg := res.ErrorText("gh pr create failed")
		if IsAlreadyExists(msg) {
			return ReviewResult{AlreadyExists: true, URL: lastURL(msg)}, nil
		}
		return ReviewResult{}, errors.New(msg)
	}
	return ReviewResult{URL: lastLine(res.Stdout)}, nil
}

// lastLine returns the last non-empty line of s; gh prints the URL last
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// lastURL finds the last https URL in an "already exists" message
func lastURL(s string) string {
	fields := strings.Fields(s)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.HasPrefix(fields[i], "https://") {
			return fields[i]
		}
	}
	return ""
}
