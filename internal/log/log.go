// Package log prints coloured, prefixed progress lines for interactive runs.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Color codes
const (
	reset      = "\033[0m"
	dim        = "\033[2m"
	green      = "\033[32m"
	yellow     = "\033[33m"
	blue       = "\033[34m"
	magenta    = "\033[35m"
	cyan       = "\033[36m"
	white      = "\033[37m"
	boldRed    = "\033[1;31m"
	boldGreen  = "\033[1;32m"
	boldYellow = "\033[1;33m"
)

// Prefixes for different log types
const (
	infoPrefix    = "ℹ️  "
	successPrefix = "✅ "
	errorPrefix   = "❌ "
	warnPrefix    = "⚠️  "
	stepPrefix    = "👉 "
	debugPrefix   = "🔍 "
	prPrefix      = "🔄 "
	gitPrefix     = "📦 "
	branchPrefix  = "🌿 "
)

// Logger writes one line per call. It is safe for concurrent use, so
// parallel clone and pull units can share one instance.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	errw  io.Writer
	debug bool
	color bool
}

// New creates a logger writing to stdout (errors and warnings to stderr).
// Colour is disabled when NO_COLOR is set.
func New(debug bool) *Logger {
	return &Logger{
		out:   os.Stdout,
		errw:  os.Stderr,
		debug: debug,
		color: os.Getenv("NO_COLOR") == "",
	}
}

// NewWithWriter creates an uncoloured logger writing everything to w
func NewWithWriter(w io.Writer, debug bool) *Logger {
	return &Logger{out: w, errw: w, debug: debug}
}

// Discard returns a logger that drops every message
func Discard() *Logger {
	return NewWithWriter(io.Discard, false)
}

func (l *Logger) print(w io.Writer, color, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		fmt.Fprintf(w, "%s%s%s%s\n", color, prefix, msg, reset)
		return
	}
	fmt.Fprintf(w, "%s%s\n", prefix, msg)
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.print(l.out, blue, infoPrefix, format, args...)
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	l.print(l.out, boldGreen, successPrefix, format, args...)
}

// Error prints an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.print(l.errw, boldRed, errorPrefix, format, args...)
}

// Warning prints a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.print(l.errw, boldYellow, warnPrefix, format, args...)
}

// Step prints a step message
func (l *Logger) Step(format string, args ...interface{}) {
	l.print(l.out, cyan, stepPrefix, format, args...)
}

// Debug prints a debug message if debug is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.print(l.out, dim, debugPrefix, format, args...)
}

// PR prints a review-request message
func (l *Logger) PR(format string, args ...interface{}) {
	l.print(l.out, magenta, prPrefix, format, args...)
}

// Git prints a clone/pull message
func (l *Logger) Git(format string, args ...interface{}) {
	l.print(l.out, white, gitPrefix, format, args...)
}

// Branch prints a branch-related message
func (l *Logger) Branch(format string, args ...interface{}) {
	l.print(l.out, green, branchPrefix, format, args...)
}

// IsDebug returns whether debug logging is enabled
func (l *Logger) IsDebug() bool {
	return l.debug
}
