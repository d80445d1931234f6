// Package hosting opens review requests (pull requests) on the hosting
// platform for branches pushed by the publisher.
package hosting

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ReviewRequest describes the pull request to open
type ReviewRequest struct {
	Base  string
	Head  string
	Title string
	Body  string
}

// ReviewResult is the outcome of a successful RequestReview. AlreadyExists
// is set when the platform reported an open request for the same head; URL
// may then be empty.
type ReviewResult struct {
	URL           string
	AlreadyExists bool
}

// Reviewer opens review requests for the working copy at dir
type Reviewer interface {
	RequestReview(ctx context.Context, dir string, req ReviewRequest) (ReviewResult, error)
}

// IsAlreadyExists reports whether a platform message says the review
// request exists already
func IsAlreadyExists(message string) bool {
	return strings.Contains(strings.ToLower(message), "already exists")
}

// ParseRepoURL parses a GitHub remote URL into owner and repo
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	repoURL = strings.TrimSuffix(strings.TrimSpace(repoURL), ".git")

	// git@github.com:owner/repo
	if strings.HasPrefix(repoURL, "git@") {
		i := strings.Index(repoURL, ":")
		if i < 0 {
			return "", "", fmt.Errorf("invalid SSH repository URL format")
		}
		parts := strings.Split(repoURL[i+1:], "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid SSH repository URL format")
		}
		return parts[0], parts[1], nil
	}

	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("invalid repository URL %q", repoURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository URL format")
	}
	return parts[0], parts[1], nil
}
