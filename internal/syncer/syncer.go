// Package syncer drives a run: list remote repositories, reconcile them
// against the destination, clone and pull, publish local changes, then
// summarise and notify.
package syncer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kurihiro0119/github-repo-sync/internal/aggregator"
	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/executor"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/lister"
	"github.com/kurihiro0119/github-repo-sync/internal/log"
	"github.com/kurihiro0119/github-repo-sync/internal/notify"
	"github.com/kurihiro0119/github-repo-sync/internal/publisher"
	"github.com/kurihiro0119/github-repo-sync/internal/reconcile"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/scanner"
)

const maxErrorLength = 200

// Options configures one run
type Options struct {
	OutputDir string
	Filter    lister.Options
	Jobs      int
	Shallow   bool
	SSH       bool
	DryRun    bool
	NoPublish bool
	Device    string
}

// Service runs the sync workflows
type Service struct {
	lister    lister.Lister
	git       *git.Client
	publisher *publisher.Publisher
	notifier  notify.Notifier
	logger    *log.Logger
	now       func() time.Time
}

// NewService creates a sync service. publisher and notifier may be nil.
func NewService(l lister.Lister, g *git.Client, p *publisher.Publisher, n notify.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		lister:    l,
		git:       g,
		publisher: p,
		notifier:  n,
		logger:    logger,
		now:       time.Now,
	}
}

// ExitCode is 0 when every clone and pull succeeded or was skipped. Publish
// failures do not affect it.
func ExitCode(report *domain.RunReport) int {
	if report.Summary.OperationsSucceeded() {
		return 0
	}
	return 1
}

// List returns the filtered remote repositories
func (s *Service) List(ctx context.Context, opts Options) ([]domain.RemoteRepo, error) {
	s.logger.Step("Fetching repository list")
	repos, err := s.lister.List(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("found %d repositories", len(repos))
	return repos, nil
}

// Clone clones every listed repository that has no working copy yet. Nothing
// is pulled or published.
func (s *Service) Clone(ctx context.Context, opts Options) (*domain.RunReport, error) {
	started := s.now()
	repos, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDest(opts); err != nil {
		return nil, err
	}

	s.logger.Step("Cloning into %s", opts.OutputDir)
	kept, collisions := reconcile.Dedupe(repos)
	units := make([]executor.Unit[domain.OperationOutcome], 0, len(kept))
	for _, repo := range kept {
		units = append(units, s.CloneUnit(repo, reconcile.TargetPath(opts.OutputDir, repo), opts))
	}
	ops := append(collisionOutcomes(collisions), executor.Run(ctx, opts.Jobs, units)...)

	return s.finish(ctx, domain.RunModeClone, opts, started, ops, nil)
}

// Sync runs the full workflow: clone missing, pull existing, then publish
// local changes unless disabled or dry-running
func (s *Service) Sync(ctx context.Context, opts Options) (*domain.RunReport, error) {
	started := s.now()
	repos, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDest(opts); err != nil {
		return nil, err
	}

	s.logger.Step("Syncing %s", opts.OutputDir)
	plan := reconcile.Reconcile(repos, opts.OutputDir)
	s.logger.Debug("%d to clone, %d to pull, %d collisions", len(plan.ToClone), len(plan.ToPull), len(plan.Collisions))

	units := make([]executor.Unit[domain.OperationOutcome], 0, len(plan.ToClone)+len(plan.ToPull))
	for _, repo := range plan.ToClone {
		units = append(units, s.CloneUnit(repo, reconcile.TargetPath(opts.OutputDir, repo), opts))
	}
	for _, t := range plan.ToPull {
		units = append(units, s.PullUnit(domain.WorkingCopy{Name: t.Repo.ShortName(), Path: t.Path}, opts))
	}
	ops := executor.Run(ctx, opts.Jobs, units)
	for _, c := range plan.Collisions {
		ops = append(ops, collisionOutcome(c))
	}

	var pubs []domain.PublishOutcome
	if s.publisher != nil && !opts.NoPublish && !opts.DryRun {
		s.logger.Step("Publishing local changes on %s", s.publisher.Branch())
		copies := scanner.Filter(scanner.Scan(opts.OutputDir), lister.ShortNames(repos))
		pubUnits := make([]executor.Unit[domain.PublishOutcome], 0, len(copies))
		for _, wc := range copies {
			wc := wc
			pubUnits = append(pubUnits, func(ctx context.Context) domain.PublishOutcome {
				return s.publisher.Publish(ctx, wc)
			})
		}
		pubs = executor.Run(ctx, opts.Jobs, pubUnits)
	}

	return s.finish(ctx, domain.RunModeSync, opts, started, ops, pubs)
}

// Pull pulls the working copies under the destination whose names match
// the remote list. Nothing is cloned or published.
func (s *Service) Pull(ctx context.Context, opts Options) (*domain.RunReport, error) {
	started := s.now()
	repos, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Step("Pulling in %s", opts.OutputDir)
	copies := scanner.Filter(scanner.Scan(opts.OutputDir), lister.ShortNames(repos))
	units := make([]executor.Unit[domain.OperationOutcome], 0, len(copies))
	for _, wc := range copies {
		units = append(units, s.PullUnit(wc, opts))
	}
	ops := executor.Run(ctx, opts.Jobs, units)

	return s.finish(ctx, domain.RunModePull, opts, started, ops, nil)
}

// CloneUnit clones repo into target. A target that is a working copy or a
// non-empty directory is skipped; a dry run only reports what would be cloned.
func (s *Service) CloneUnit(repo domain.RemoteRepo, target string, opts Options) executor.Unit[domain.OperationOutcome] {
	name := repo.ShortName()
	url := repo.CloneURL(opts.SSH)
	return func(ctx context.Context) domain.OperationOutcome {
		if opts.DryRun {
			s.logger.Info("[dry run] would clone: %s -> %s", url, target)
			return domain.Skipped{Repo: name, Op: domain.OperationClone, Reason: "dry run"}
		}
		if git.IsOccupied(target) {
			s.logger.Debug("skip (exists): %s", target)
			return domain.Skipped{Repo: name, Op: domain.OperationClone, Reason: "exists"}
		}

		res, err := s.git.Clone(ctx, url, target, opts.Shallow)
		if err != nil {
			msg := git.ErrorMessage(err, maxErrorLength)
			s.logger.Error("error cloning %s: %s", url, msg)
			return domain.Failed{Repo: name, Op: domain.OperationClone, Message: msg}
		}
		if !res.OK() {
			msg := firstLine(res.ErrorText(fmt.Sprintf("git clone exited with status %d", res.ExitCode)))
			s.logger.Error("error cloning %s: %s", url, msg)
			return domain.Failed{Repo: name, Op: domain.OperationClone, Message: msg}
		}
		s.logger.Git("cloned: %s", target)
		return domain.Cloned{Repo: name}
	}
}

// PullUnit pulls the working copy wc
func (s *Service) PullUnit(wc domain.WorkingCopy, opts Options) executor.Unit[domain.OperationOutcome] {
	return func(ctx context.Context) domain.OperationOutcome {
		if opts.DryRun {
			s.logger.Info("[dry run] would pull: %s", wc.Path)
			return domain.Skipped{Repo: wc.Name, Op: domain.OperationPull, Reason: "dry run"}
		}

		res, err := s.git.Pull(ctx, wc.Path)
		if err != nil {
			msg := git.ErrorMessage(err, maxErrorLength)
			s.logger.Error("failed: %s (%s)", wc.Path, msg)
			return domain.Failed{Repo: wc.Name, Op: domain.OperationPull, Message: msg}
		}
		if !res.OK() {
			msg := firstLine(res.ErrorText(fmt.Sprintf("git pull exited with status %d", res.ExitCode)))
			s.logger.Error("failed: %s (%s)", wc.Path, msg)
			return domain.Failed{Repo: wc.Name, Op: domain.OperationPull, Message: msg}
		}
		s.logger.Git("pulled: %s", wc.Path)
		return domain.Pulled{Repo: wc.Name}
	}
}

func (s *Service) ensureDest(opts Options) error {
	if opts.DryRun {
		return nil
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.OutputDir, err)
	}
	return nil
}

// finish builds the report and hands it to the notifier. A notifier error
// is logged; the run itself already happened.
func (s *Service) finish(ctx context.Context, mode domain.RunMode, opts Options, started time.Time,
	ops []domain.OperationOutcome, pubs []domain.PublishOutcome) (*domain.RunReport, error) {
	report := &domain.RunReport{
		ID:         uuid.New().String(),
		Mode:       mode,
		Device:     opts.Device,
		OutputDir:  opts.OutputDir,
		StartedAt:  started.UTC(),
		FinishedAt: s.now().UTC(),
		Summary:    aggregator.Build(ops, pubs),
	}

	c := report.Summary.Counts
	s.logger.Success("Done: %d cloned, %d pulled, %d skipped, %d committed, %d failed",
		c.Cloned, c.Pulled, c.Skipped, c.Committed, c.Failures)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, report); err != nil {
			s.logger.Warning("notification failed: %v", err)
		}
	}
	return report, nil
}

func collisionOutcome(c reconcile.Collision) domain.OperationOutcome {
	return domain.Skipped{
		Repo:   c.Name,
		Op:     domain.OperationClone,
		Reason: "name collision with " + c.Kept.FullName + " (dropped " + c.Dropped.FullName + ")",
	}
}

func firstLine(s string) string {
	return runner.FirstLine(s, maxErrorLength)
}

func collisionOutcomes(collisions []reconcile.Collision) []domain.OperationOutcome {
	out := make([]domain.OperationOutcome, 0, len(collisions))
	for _, c := range collisions {
		out = append(out, collisionOutcome(c))
	}
	return out
}
