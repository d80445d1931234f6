package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

// TaskName is the Windows scheduled task name
const TaskName = "RepoSyncDaily"

type schtasks struct {
	runner runner.Runner
}

// NewSchtasks creates a scheduler backed by schtasks.exe
func NewSchtasks(r runner.Runner) Scheduler {
	return &schtasks{runner: r}
}

func (s *schtasks) Install(ctx context.Context, job Job) error {
	quoted := make([]string, len(job.Command))
	for i, arg := range job.Command {
		quoted[i] = windowsQuote(arg)
	}
	args := []string{
		"/Create", "/F",
		"/SC", "DAILY",
		"/ST", fmt.Sprintf("%02d:%02d", job.Hour, job.Minute),
		"/TN", TaskName,
		"/TR", strings.Join(quoted, " "),
	}
	return s.run(ctx, args)
}

func (s *schtasks) Remove(ctx context.Context) error {
	err := s.run(ctx, []string{"/Delete", "/F", "/TN", TaskName})
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "cannot find") {
		return nil
	}
	return err
}

func (s *schtasks) run(ctx context.Context, args []string) error {
	res, err := s.runner.Run(ctx, runner.Command{Name: "schtasks", Args: args})
	if err != nil {
		return fmt.Errorf("schtasks: %w", err)
	}
	if !res.OK() {
		return fmt.Errorf("schtasks: %s", runner.FirstLine(res.ErrorText("failed"), 200))
	}
	return nil
}
