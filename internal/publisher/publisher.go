// Package publisher commits local modifications of a working copy to a
// dated branch, pushes it and asks the hosting platform for a review.
package publisher

import (
	"context"
	"time"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/hosting"
	"github.com/kurihiro0119/github-repo-sync/internal/log"
)

// DefaultBaseBranch is the trunk review requests target
const DefaultBaseBranch = "main"

const (
	reviewBody       = "Automated sync from repo-sync."
	maxMessageLength = 200
)

// Options configures a Publisher for one run
type Options struct {
	BaseBranch   string
	DeviceSuffix string    // already resolved; empty means no suffix
	Now          time.Time // run start; zero means time.Now()
}

// Publisher runs the publish sequence for working copies. The branch name
// and date are fixed when the Publisher is created, so every repository in
// a run uses the same branch.
type Publisher struct {
	git      *git.Client
	reviewer hosting.Reviewer
	logger   *log.Logger

	base   string
	date   string
	branch string
}

// New creates a publisher
func New(g *git.Client, reviewer hosting.Reviewer, logger *log.Logger, opts Options) *Publisher {
	if logger == nil {
		logger = log.Discard()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	base := opts.BaseBranch
	if base == "" {
		base = DefaultBaseBranch
	}
	return &Publisher{
		git:      g,
		reviewer: reviewer,
		logger:   logger,
		base:     base,
		date:     DateString(now),
		branch:   BranchName(now, opts.DeviceSuffix),
	}
}

// Branch returns the branch this run commits to
func (p *Publisher) Branch() string {
	return p.branch
}

// CommitMessage returns the commit message used for this run
func (p *Publisher) CommitMessage() string {
	return "Auto-sync from repo-sync (" + p.date + ")"
}

// Publish commits and pushes the local changes of wc and requests a review.
// Steps run strictly in order; a failure stops the sequence and nothing is
// rolled back.
func (p *Publisher) Publish(ctx context.Context, wc domain.WorkingCopy) domain.PublishOutcome {
	fail := func(stage domain.PublishStage, err error) domain.PublishOutcome {
		msg := git.ErrorMessage(err, maxMessageLength)
		p.logger.Error("%s: %s failed: %s", wc.Name, stage, msg)
		return domain.PublishFailed{Repo: wc.Name, Branch: p.branch, Stage: stage, Message: msg}
	}

	dirty, err := p.git.IsDirty(ctx, wc.Path)
	if err != nil {
		return fail(domain.StageStatus, err)
	}
	if !dirty {
		p.logger.Debug("%s: clean", wc.Name)
		return domain.NoChanges{Repo: wc.Name}
	}

	if err := p.ensureBranch(ctx, wc.Path); err != nil {
		return fail(domain.StageBranch, err)
	}

	if err := p.git.AddAll(ctx, wc.Path); err != nil {
		return fail(domain.StageStage, err)
	}
	dirty, err = p.git.IsDirty(ctx, wc.Path)
	if err != nil {
		return fail(domain.StageStage, err)
	}
	if !dirty {
		p.logger.Debug("%s: nothing staged", wc.Name)
		return domain.NoChanges{Repo: wc.Name}
	}

	if err := p.git.Commit(ctx, wc.Path, p.CommitMessage()); err != nil {
		return fail(domain.StageCommit, err)
	}
	if err := p.git.PushUpstream(ctx, wc.Path, p.branch); err != nil {
		return fail(domain.StagePush, err)
	}
	p.logger.Git("%s: pushed %s", wc.Name, p.branch)

	res, err := p.reviewer.RequestReview(ctx, wc.Path, hosting.ReviewRequest{
		Base:  p.base,
		Head:  p.branch,
		Title: "Auto-sync " + p.date,
		Body:  reviewBody,
	})
	if err != nil {
		out := fail(domain.StageReview, err).(domain.PublishFailed)
		out.DidCommit = true
		return out
	}
	if res.AlreadyExists || res.URL == "" {
		p.logger.Debug("%s: review request already open", wc.Name)
		return domain.Committed{Repo: wc.Name, Branch: p.branch}
	}
	p.logger.PR("%s: %s", wc.Name, res.URL)
	return domain.CommittedAndRequested{Repo: wc.Name, Branch: p.branch, ReviewURL: res.URL}
}

// ensureBranch switches to the run's branch, creating it when missing
func (p *Publisher) ensureBranch(ctx context.Context, repo string) error {
	exists, err := p.git.BranchExists(ctx, repo, p.branch)
	if err != nil {
		return err
	}
	if exists {
		p.logger.Branch("reusing %s", p.branch)
	} else {
		p.logger.Branch("creating %s", p.branch)
	}
	return p.git.Checkout(ctx, repo, p.branch, !exists)
}
