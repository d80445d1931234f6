// Package runner invokes external command-line tools (git, gh, crontab) as
// opaque subprocesses and reports their exit status and output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Command describes one external tool invocation
type Command struct {
	Dir   string // working directory; empty means the current one
	Name  string
	Args  []string
	Stdin string
}

// String renders the command line for logs and error messages
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the exit status and captured output of a finished command
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports a zero exit status
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// ErrorText returns stderr, falling back to stdout, then to fallback
func (r Result) ErrorText(fallback string) string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	return fallback
}

// Runner runs external commands. A non-zero exit status is reported in
// Result, not as an error; the error is reserved for commands that could not
// be started at all (binary missing, bad working directory).
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// NewExecRunner creates a runner backed by real subprocesses
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes cmd and waits for it to finish. There is no timeout: a hung
// process blocks the caller until it exits or ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// FirstLine returns the first non-empty line of s, truncated to max runes
func FirstLine(s string, max int) string {
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return Truncate(line, max)
	}
	return ""
}

// Truncate shortens s to at most max runes
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
