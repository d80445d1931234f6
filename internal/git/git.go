// Package git wraps the git command-line tool. Every call goes through a
// runner.Runner so tests can script the tool's responses.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

// Binary is the executable name of the version-control tool
const Binary = "git"

// CommandError is returned when git exits non-zero
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string // stderr, or stdout when stderr is empty
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: exit status %d: %s", strings.Join(e.Args, " "), e.ExitCode, e.Output)
}

// Client runs git commands
type Client struct {
	runner runner.Runner
}

// New creates a git client
func New(r runner.Runner) *Client {
	return &Client{runner: r}
}

// IsWorkingCopy reports whether dir contains a .git directory
func IsWorkingCopy(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// IsOccupied reports whether dir is a working copy or a non-empty
// directory. git clone refuses both.
func IsOccupied(dir string) bool {
	if IsWorkingCopy(dir) {
		return true
	}
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// run executes git with args and returns the raw result. The error is non-nil
// only when git could not be started.
func (c *Client) run(ctx context.Context, args ...string) (runner.Result, error) {
	res, err := c.runner.Run(ctx, runner.Command{Name: Binary, Args: args})
	if err != nil {
		return res, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return res, nil
}

// runOK executes git in repo and converts a non-zero exit into a CommandError
func (c *Client) runOK(ctx context.Context, repo string, args ...string) (string, error) {
	full := append([]string{"-C", repo}, args...)
	res, err := c.run(ctx, full...)
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", &CommandError{Args: args, ExitCode: res.ExitCode, Output: res.ErrorText("exit status " + strconv.Itoa(res.ExitCode))}
	}
	return res.Stdout, nil
}

// Clone clones url into target. Shallow clones use --depth 1.
func (c *Client) Clone(ctx context.Context, url, target string, shallow bool) (runner.Result, error) {
	args := []string{"clone", url, target}
	if shallow {
		args = append(args, "--depth", "1")
	}
	return c.run(ctx, args...)
}

// Pull runs git pull in repo and returns the raw result
func (c *Client) Pull(ctx context.Context, repo string) (runner.Result, error) {
	return c.run(ctx, "-C", repo, "pull")
}

// StatusPorcelain returns the output of git status --porcelain
func (c *Client) StatusPorcelain(ctx context.Context, repo string) (string, error) {
	return c.runOK(ctx, repo, "status", "--porcelain")
}

// IsDirty reports whether the working tree has uncommitted changes
func (c *Client) IsDirty(ctx context.Context, repo string) (bool, error) {
	out, err := c.StatusPorcelain(ctx, repo)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CurrentBranch returns the abbreviated name of HEAD
func (c *Client) CurrentBranch(ctx context.Context, repo string) (string, error) {
	out, err := c.runOK(ctx, repo, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// AheadBehind returns the commit counts ahead of and behind the upstream
// tracking branch
func (c *Client) AheadBehind(ctx context.Context, repo string) (ahead, behind int, err error) {
	out, err := c.runOK(ctx, repo, "rev-list", "--left-right", "--count", "@{u}...HEAD")
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", strings.TrimSpace(out))
	}
	// left side is the upstream
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	ahead, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// BranchExists reports whether a local branch resolves
func (c *Client) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	res, err := c.run(ctx, "-C", repo, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// Checkout switches to branch, creating it first when create is set
func (c *Client) Checkout(ctx context.Context, repo, branch string, create bool) error {
	args := []string{"checkout"}
	if create {
		args = append(args, "-b")
	}
	_, err := c.runOK(ctx, repo, append(args, branch)...)
	return err
}

// AddAll stages every change, tracked and untracked, honouring ignore rules
func (c *Client) AddAll(ctx context.Context, repo string) error {
	_, err := c.runOK(ctx, repo, "add", "-A")
	return err
}

// Commit records the staged changes
func (c *Client) Commit(ctx context.Context, repo, message string) error {
	_, err := c.runOK(ctx, repo, "commit", "-m", message)
	return err
}

// PushUpstream pushes branch to origin and sets it as upstream
func (c *Client) PushUpstream(ctx context.Context, repo, branch string) error {
	_, err := c.runOK(ctx, repo, "push", "-u", "origin", branch)
	return err
}

// RemoteURL returns the fetch URL of origin
func (c *Client) RemoteURL(ctx context.Context, repo string) (string, error) {
	out, err := c.runOK(ctx, repo, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ErrorMessage reduces err to the first line of the tool's output, or of
// the error text when git did not run, truncated to max runes
func ErrorMessage(err error, max int) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return runner.FirstLine(cmdErr.Output, max)
	}
	return runner.FirstLine(err.Error(), max)
}
