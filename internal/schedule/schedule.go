// Package schedule registers and removes the daily unattended sync run with
// the operating system's task scheduler.
package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
)

// Job is the recurring command to register
type Job struct {
	Command []string // executable followed by its arguments
	Hour    int
	Minute  int
	LogFile string // appended to when set; ignored by schtasks
}

// Scheduler installs and removes the recurring job. Install replaces any
// job installed earlier.
type Scheduler interface {
	Install(ctx context.Context, job Job) error
	Remove(ctx context.Context) error
}

// New returns the scheduler for goos
func New(goos string, r runner.Runner) (Scheduler, error) {
	switch goos {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return NewCron(r), nil
	case "windows":
		return NewSchtasks(r), nil
	default:
		return nil, fmt.Errorf("scheduling is not supported on %s", goos)
	}
}

// shellQuote quotes s for /bin/sh when it contains anything but safe characters
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=@%+,", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// windowsQuote quotes s for a schtasks /TR command line
func windowsQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
