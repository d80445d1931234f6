package log

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesPlainLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, false)

	l.Git("pulled: %s", "repo1")
	l.Debug("hidden")

	assert.Equal(t, gitPrefix+"pulled: repo1\n", buf.String())
}

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, true)

	l.Debug("shown %d", 1)

	assert.True(t, l.IsDebug())
	assert.Contains(t, buf.String(), "shown 1")
}

func TestLoggerConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Info("line")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 50)
	for _, line := range lines {
		assert.Equal(t, infoPrefix+"line", line)
	}
}
