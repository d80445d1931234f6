package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/runner/runnertest"
)

var job = Job{
	Command: []string{"/usr/local/bin/repo-sync", "sync", "--output-dir", "/home/me/My Code"},
	Hour:    2,
	LogFile: "/tmp/repo-sync.log",
}

func TestLine(t *testing.T) {
	assert.Equal(t,
		"0 2 * * * /usr/local/bin/repo-sync sync --output-dir '/home/me/My Code' >> /tmp/repo-sync.log 2>&1 # repo-sync daily",
		Line(job))
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "plain", shellQuote("plain"))
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

// crontabFake keeps an in-memory crontab
func crontabFake(initial string, exists bool) (*runnertest.Fake, *string) {
	content := initial
	fake := runnertest.New().
		On([]string{"crontab", "-l"}, func(runner.Command) (runner.Result, error) {
			if !exists {
				return runner.Result{ExitCode: 1, Stderr: "no crontab for me"}, nil
			}
			return runner.Result{Stdout: content}, nil
		}).
		On([]string{"crontab", "-"}, func(cmd runner.Command) (runner.Result, error) {
			content = cmd.Stdin
			exists = true
			return runner.Result{}, nil
		})
	return fake, &content
}

func TestCronInstallOnEmptyCrontab(t *testing.T) {
	fake, content := crontabFake("", false)

	require.NoError(t, NewCron(fake).Install(context.Background(), job))

	assert.Equal(t, Line(job)+"\n", *content)
}

func TestCronInstallReplacesPreviousEntry(t *testing.T) {
	fake, content := crontabFake("MAILTO=me\n30 1 * * * old-command # repo-sync daily\n5 * * * * backup\n", true)
	s := NewCron(fake)

	require.NoError(t, s.Install(context.Background(), job))
	require.NoError(t, s.Install(context.Background(), job))

	assert.Equal(t, "MAILTO=me\n5 * * * * backup\n"+Line(job)+"\n", *content)
}

func TestCronRemove(t *testing.T) {
	fake, content := crontabFake("5 * * * * backup\n"+Line(job)+"\n", true)

	require.NoError(t, NewCron(fake).Remove(context.Background()))

	assert.Equal(t, "5 * * * * backup\n", *content)
}

func TestCronRemoveWithoutEntryDoesNotWrite(t *testing.T) {
	fake, _ := crontabFake("", false)

	require.NoError(t, NewCron(fake).Remove(context.Background()))

	assert.Equal(t, []string{"crontab -l"}, fake.CallLines())
}

func TestCronReadFailure(t *testing.T) {
	fake := runnertest.New().On([]string{"crontab", "-l"}, runnertest.Exit(1, "crontab: permission denied"))

	err := NewCron(fake).Install(context.Background(), job)

	assert.ErrorContains(t, err, "permission denied")
}

func TestSchtasks(t *testing.T) {
	fake := runnertest.New()
	s := NewSchtasks(fake)

	require.NoError(t, s.Install(context.Background(), Job{
		Command: []string{`C:\Tools\repo-sync.exe`, "sync", "--output-dir", `C:\Users\me\My Code`},
		Hour:    2,
	}))

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "schtasks", calls[0].Name)
	assert.Equal(t, []string{
		"/Create", "/F", "/SC", "DAILY", "/ST", "02:00", "/TN", TaskName,
		"/TR", `C:\Tools\repo-sync.exe sync --output-dir "C:\Users\me\My Code"`,
	}, calls[0].Args)
}

func TestSchtasksRemoveMissingTask(t *testing.T) {
	fake := runnertest.New().On([]string{"schtasks", "/Delete"},
		runnertest.Exit(1, "ERROR: The system cannot find the file specified."))

	assert.NoError(t, NewSchtasks(fake).Remove(context.Background()))
}

func TestNew(t *testing.T) {
	s, err := New("linux", runnertest.New())
	require.NoError(t, err)
	assert.IsType(t, &cron{}, s)

	s, err = New("windows", runnertest.New())
	require.NoError(t, err)
	assert.IsType(t, &schtasks{}, s)

	_, err = New("plan9", runnertest.New())
	assert.Error(t, err)
}
