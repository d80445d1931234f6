package hosting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

// RemoteResolver returns the origin URL of a working copy
type RemoteResolver interface {
	RemoteURL(ctx context.Context, repo string) (string, error)
}

type githubReviewer struct {
	client *github.Client
	remote RemoteResolver
}

// NewGitHubReviewer opens review requests through the REST API
func NewGitHubReviewer(token string, remote RemoteResolver) Reviewer {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return NewGitHubReviewerWithClient(github.NewClient(tc), remote)
}

// NewGitHubReviewerWithClient wraps an existing client
func NewGitHubReviewerWithClient(client *github.Client, remote RemoteResolver) Reviewer {
	return &githubReviewer{client: client, remote: remote}
}

func (g *githubReviewer) RequestReview(ctx context.Context, dir string, req ReviewRequest) (ReviewResult, error) {
	remoteURL, err := g.remote.RemoteURL(ctx, dir)
	if err != nil {
		return ReviewResult{}, err
	}
	owner, repo, err := ParseRepoURL(remoteURL)
	if err != nil {
		return ReviewResult{}, err
	}

	pr, _, err := g.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Body),
		Head:  github.String(req.Head),
		Base:  github.String(req.Base),
	})
	if err != nil {
		if isAlreadyExistsResponse(err) {
			return ReviewResult{AlreadyExists: true, URL: g.findOpen(ctx, owner, repo, req.Head)}, nil
		}
		return ReviewResult{}, fmt.Errorf("failed to create PR: %w", err)
	}
	return ReviewResult{URL: pr.GetHTMLURL()}, nil
}

// findOpen looks up the open pull request for head. Lookup errors are
// ignored; the request exists either way.
func (g *githubReviewer) findOpen(ctx context.Context, owner, repo, head string) string {
	prs, _, err := g.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State: "open",
		Head:  owner + ":" + head,
	})
	if err != nil || len(prs) == 0 {
		return ""
	}
	return prs[0].GetHTMLURL()
}

func isAlreadyExistsResponse(err error) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}
	if IsAlreadyExists(errResp.Message) {
		return true
	}
	for _, e := range errResp.Errors {
		if IsAlreadyExists(e.Message) {
			return true
		}
	}
	return false
}
