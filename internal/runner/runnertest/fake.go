// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"strings"
	"sync"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

// Handler produces the result for a matched command
type Handler func(cmd runner.Command) (runner.Result, error)

type rule struct {
	match   func(cmd runner.Command) bool
	handler Handler
}

// Fake is a runner.Runner whose responses are scripted by rules. The first
// matching rule wins; unmatched commands succeed with empty output. Every
// call is recorded. Fake is safe for concurrent use.
type Fake struct {
	mu    sync.Mutex
	rules []rule
	calls []runner.Command
}

// New creates an empty fake
func New() *Fake {
	return &Fake{}
}

// On registers a handler for commands whose name and leading args equal
// prefix, ignoring a leading "-C <path>" pair in the args.
func (f *Fake) On(prefix []string, h Handler) *Fake {
	return f.OnMatch(func(cmd runner.Command) bool {
		return HasPrefix(cmd, prefix...)
	}, h)
}

// OnMatch registers a handler with an arbitrary matcher
func (f *Fake) OnMatch(match func(cmd runner.Command) bool, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: match, handler: h})
	return f
}

// Run implements runner.Runner
func (f *Fake) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	rules := append([]rule(nil), f.rules...)
	f.mu.Unlock()

	for _, r := range rules {
		if r.match(cmd) {
			return r.handler(cmd)
		}
	}
	return runner.Result{}, nil
}

// Calls returns a copy of every recorded command
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// CallLines returns every recorded command as "name arg arg ..." with any
// "-C <path>" pair removed
func (f *Fake) CallLines() []string {
	var lines []string
	for _, c := range f.Calls() {
		lines = append(lines, strings.Join(append([]string{c.Name}, StripDir(c.Args)...), " "))
	}
	return lines
}

// Stdout returns a handler that exits 0 with the given output
func Stdout(out string) Handler {
	return func(runner.Command) (runner.Result, error) {
		return runner.Result{Stdout: out}, nil
	}
}

// Exit returns a handler that exits with code and stderr
func Exit(code int, stderr string) Handler {
	return func(runner.Command) (runner.Result, error) {
		return runner.Result{ExitCode: code, Stderr: stderr}, nil
	}
}

// HasPrefix reports whether cmd's name and args (minus "-C <path>") start with prefix
func HasPrefix(cmd runner.Command, prefix ...string) bool {
	full := append([]string{cmd.Name}, StripDir(cmd.Args)...)
	if len(full) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if full[i] != p {
			return false
		}
	}
	return true
}

// DirOf returns the path passed with -C, or cmd.Dir
func DirOf(cmd runner.Command) string {
	if len(cmd.Args) >= 2 && cmd.Args[0] == "-C" {
		return cmd.Args[1]
	}
	return cmd.Dir
}

// StripDir removes a leading "-C <path>" pair
func StripDir(args []string) []string {
	if len(args) >= 2 && args[0] == "-C" {
		return args[2:]
	}
	return args
}
