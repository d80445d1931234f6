package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-sync/internal/config"
	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/log"
	"github.com/kurihiro0119/github-repo-sync/internal/notify"
	"github.com/kurihiro0119/github-repo-sync/internal/publisher"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
	"github.com/kurihiro0119/github-repo-sync/internal/syncer"
)

var noPublish bool

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Clone repositories that are not in the output directory yet",
	Long:  `Clone every listed repository that has no working copy in the output directory. Existing working copies are skipped.`,
	Args:  cobra.NoArgs,
	RunE:  runClone,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone missing repositories, pull existing ones and publish local changes",
	Long: `Clone missing repositories and pull existing ones. Working copies with local
changes are then committed to feature/<date>-<device>, pushed, and a pull
request is opened against the base branch.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the working copies of your repositories",
	Long:  `Pull every working copy in the output directory that belongs to a listed repository. Nothing is cloned.`,
	Args:  cobra.NoArgs,
	RunE:  runPull,
}

func init() {
	syncCmd.Flags().BoolVar(&noPublish, "no-publish", false, "do not commit or open pull requests for local changes")
}

type runFunc func(*syncer.Service, context.Context, syncer.Options) (*domain.RunReport, error)

func runClone(cmd *cobra.Command, args []string) error {
	return runWorkflow(cmd, (*syncer.Service).Clone)
}

func runSync(cmd *cobra.Command, args []string) error {
	return runWorkflow(cmd, (*syncer.Service).Sync)
}

func runPull(cmd *cobra.Command, args []string) error {
	return runWorkflow(cmd, (*syncer.Service).Pull)
}

func runWorkflow(cmd *cobra.Command, run runFunc) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	ctx := context.Background()

	r := runner.NewExecRunner()
	g := git.New(r)
	pub := publisher.New(g, newReviewer(cfg, r, g), logger, publisher.Options{
		BaseBranch:   cfg.BaseBranch,
		DeviceSuffix: publisher.ResolveSuffix(cfg.BranchSuffix),
		Now:          time.Now(),
	})

	notifiers := notify.Multi{notify.NewConsole(os.Stdout, outputJSON)}
	if !dryRun {
		if store := openHistory(cfg, logger); store != nil {
			defer store.Close()
			notifiers = append(notifiers, notify.NewStore(store))
		}
	}

	svc := syncer.NewService(newLister(cfg, r, logger), g, pub, notifiers, logger)
	report, err := run(svc, ctx, syncOptions(cfg))
	if err != nil {
		return err
	}
	if syncer.ExitCode(report) != 0 {
		return errOperationsFailed
	}
	return nil
}

func syncOptions(cfg *config.Config) syncer.Options {
	return syncer.Options{
		OutputDir: cfg.OutputDir,
		Filter:    listOptions(cfg),
		Jobs:      cfg.Jobs,
		Shallow:   cfg.Shallow,
		SSH:       cfg.SSH,
		DryRun:    dryRun,
		NoPublish: noPublish,
		Device:    deviceName(),
	}
}

// openHistory opens the configured run-history store, logging instead of
// failing when it is unavailable
func openHistory(cfg *config.Config, logger *log.Logger) storage.Storage {
	store, err := getStorage(cfg)
	if err != nil {
		logger.Warning("run history disabled: %v", err)
		return nil
	}
	return store
}
