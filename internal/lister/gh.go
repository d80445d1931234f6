package lister

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-sync/internal/errors"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

// GHBinary is the executable name of the GitHub CLI
const GHBinary = "gh"

const ghInstallHint = "install it from https://cli.github.com/ (brew install gh, winget install GitHub.cli)"

// ghRepo mirrors the JSON fields requested from gh repo list
type ghRepo struct {
	NameWithOwner string `json:"nameWithOwner"`
	URL           string `json:"url"`
	SSHURL        string `json:"sshUrl"`
	IsArchived    bool   `json:"isArchived"`
}

// ghLister implements Lister with the GitHub CLI
type ghLister struct {
	runner runner.Runner
}

// NewGHLister creates a lister backed by gh repo list
func NewGHLister(r runner.Runner) Lister {
	return &ghLister{runner: r}
}

// CheckGH verifies that gh is installed and logged in
func CheckGH(ctx context.Context, r runner.Runner) error {
	if _, err := r.Run(ctx, runner.Command{Name: GHBinary, Args: []string{"--version"}}); err != nil {
		return apperrors.NewToolMissingError("GitHub CLI (gh)", ghInstallHint)
	}
	res, err := r.Run(ctx, runner.Command{Name: GHBinary, Args: []string{"auth", "status"}})
	if err != nil {
		return apperrors.NewToolMissingError("GitHub CLI (gh)", ghInstallHint)
	}
	if !res.OK() {
		return apperrors.NewUnauthenticatedError("gh is not logged in; run: gh auth login")
	}
	return nil
}

// List retrieves repositories with gh repo list
func (l *ghLister) List(ctx context.Context, opts Options) ([]domain.RemoteRepo, error) {
	if err := CheckGH(ctx, l.runner); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	args := []string{"repo", "list"}
	if opts.Owner != "" {
		args = append(args, opts.Owner)
	}
	args = append(args, "--limit", strconv.Itoa(limit), "--json", "nameWithOwner,url,sshUrl,isArchived")

	res, err := l.runner.Run(ctx, runner.Command{Name: GHBinary, Args: args})
	if err != nil {
		return nil, apperrors.NewListingError("failed to run gh repo list", err)
	}
	if !res.OK() {
		return nil, apperrors.NewListingError(runner.FirstLine(res.ErrorText("gh repo list failed"), 200), nil)
	}

	var raw []ghRepo
	if err := json.Unmarshal([]byte(res.Stdout), &raw); err != nil {
		return nil, apperrors.NewListingError("failed to decode gh repo list output", err)
	}

	repos := make([]domain.RemoteRepo, 0, len(raw))
	for _, r := range raw {
		sshURL := r.SSHURL
		if sshURL == "" {
			sshURL = r.URL
		}
		repos = append(repos, domain.RemoteRepo{
			FullName:   r.NameWithOwner,
			HTTPSURL:   r.URL,
			SSHURL:     sshURL,
			IsArchived: r.IsArchived,
		})
	}
	return Apply(repos, opts), nil
}
