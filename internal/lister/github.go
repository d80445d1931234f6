package lister

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-sync/internal/errors"
	"github.com/kurihiro0119/github-repo-sync/internal/log"
)

// githubLister implements Lister using the GitHub REST API
type githubLister struct {
	client      *github.Client
	rateLimiter RateLimiter
}

// NewGitHubLister creates a REST lister authenticated with token
func NewGitHubLister(token string, logger *log.Logger) Lister {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return NewGitHubListerWithClient(github.NewClient(tc), NewRateLimiter(100*time.Millisecond, logger))
}

// NewGitHubListerWithClient creates a REST lister around an existing client
func NewGitHubListerWithClient(client *github.Client, limiter RateLimiter) Lister {
	return &githubLister{client: client, rateLimiter: limiter}
}

// List retrieves the repositories of opts.Owner, or of the authenticated
// user when no owner is set
func (l *githubLister) List(ctx context.Context, opts Options) ([]domain.RemoteRepo, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		repos []domain.RemoteRepo
		err   error
	)
	if opts.Owner == "" {
		repos, err = l.listForUser(ctx, "", limit)
	} else {
		repos, err = l.listForOwner(ctx, opts.Owner, limit)
	}
	if err != nil {
		return nil, err
	}
	return Apply(repos, opts), nil
}

// listForOwner lists an organization's repositories, or a user's when the
// owner is not an organization
func (l *githubLister) listForOwner(ctx context.Context, owner string, limit int) ([]domain.RemoteRepo, error) {
	if err := l.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	user, resp, err := l.client.Users.Get(ctx, owner)
	if err != nil {
		return nil, l.listingError(resp, "failed to look up owner "+owner, err)
	}
	l.updateRateLimitFromResponse(resp)

	if user.GetType() != "Organization" {
		return l.listForUser(ctx, owner, limit)
	}

	var all []domain.RemoteRepo
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: perPage(limit)},
	}
	for {
		if err := l.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := l.client.Repositories.ListByOrg(ctx, owner, opts)
		if err != nil {
			return nil, l.listingError(resp, "failed to list repositories for "+owner, err)
		}
		l.updateRateLimitFromResponse(resp)

		all = appendRepos(all, repos)
		if len(all) >= limit || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return truncate(all, limit), nil
}

// listForUser lists a user's repositories; user "" means the authenticated
// user, including organization and collaborator repositories
func (l *githubLister) listForUser(ctx context.Context, user string, limit int) ([]domain.RemoteRepo, error) {
	var all []domain.RemoteRepo
	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: perPage(limit)},
	}
	if user == "" {
		opts.Affiliation = "owner,collaborator,organization_member"
	}
	for {
		if err := l.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := l.client.Repositories.List(ctx, user, opts)
		if err != nil {
			return nil, l.listingError(resp, "failed to list repositories", err)
		}
		l.updateRateLimitFromResponse(resp)

		all = appendRepos(all, repos)
		if len(all) >= limit || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return truncate(all, limit), nil
}

func (l *githubLister) listingError(resp *github.Response, message string, err error) error {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return apperrors.NewUnauthenticatedError("GitHub rejected the token; check GITHUB_TOKEN")
	}
	return apperrors.NewListingError(message, err)
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (l *githubLister) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		l.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

func appendRepos(all []domain.RemoteRepo, repos []*github.Repository) []domain.RemoteRepo {
	for _, r := range repos {
		all = append(all, domain.RemoteRepo{
			FullName:   r.GetFullName(),
			HTTPSURL:   r.GetCloneURL(),
			SSHURL:     r.GetSSHURL(),
			IsArchived: r.GetArchived(),
		})
	}
	return all
}

func perPage(limit int) int {
	if limit < 100 {
		return limit
	}
	return 100
}

func truncate(repos []domain.RemoteRepo, limit int) []domain.RemoteRepo {
	if len(repos) > limit {
		return repos[:limit]
	}
	return repos
}
