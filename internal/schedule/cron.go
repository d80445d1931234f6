package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

// cronMarker tags the crontab line owned by this tool
const cronMarker = "# repo-sync daily"

type cron struct {
	runner runner.Runner
}

// NewCron creates a scheduler that edits the user's crontab
func NewCron(r runner.Runner) Scheduler {
	return &cron{runner: r}
}

func (c *cron) Install(ctx context.Context, job Job) error {
	lines, err := c.read(ctx)
	if err != nil {
		return err
	}
	lines = append(withoutMarker(lines), Line(job))
	return c.write(ctx, lines)
}

func (c *cron) Remove(ctx context.Context) error {
	lines, err := c.read(ctx)
	if err != nil {
		return err
	}
	kept := withoutMarker(lines)
	if len(kept) == len(lines) {
		return nil
	}
	return c.write(ctx, kept)
}

// Line renders the crontab entry for job
func Line(job Job) string {
	quoted := make([]string, len(job.Command))
	for i, arg := range job.Command {
		quoted[i] = shellQuote(arg)
	}
	cmd := strings.Join(quoted, " ")
	if job.LogFile != "" {
		cmd += " >> " + shellQuote(job.LogFile) + " 2>&1"
	}
	return fmt.Sprintf("%d %d * * * %s %s", job.Minute, job.Hour, cmd, cronMarker)
}

func (c *cron) read(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, runner.Command{Name: "crontab", Args: []string{"-l"}})
	if err != nil {
		return nil, fmt.Errorf("crontab -l: %w", err)
	}
	if !res.OK() {
		// an empty crontab is reported as an error
		if strings.Contains(strings.ToLower(res.Stderr), "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("crontab -l: %s", runner.FirstLine(res.ErrorText("failed"), 200))
	}
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (c *cron) write(ctx context.Context, lines []string) error {
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	res, err := c.runner.Run(ctx, runner.Command{Name: "crontab", Args: []string{"-"}, Stdin: content})
	if err != nil {
		return fmt.Errorf("crontab -: %w", err)
	}
	if !res.OK() {
		return fmt.Errorf("crontab -: %s", runner.FirstLine(res.ErrorText("failed"), 200))
	}
	return nil
}

func withoutMarker(lines []string) []string {
	var out []string
	for _, l := range lines {
		if !strings.HasSuffix(strings.TrimSpace(l), cronMarker) {
			out = append(out, l)
		}
	}
	return out
}
