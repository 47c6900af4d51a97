package npm

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/security"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("expected command lines use POSIX quoting")
	}
}

func TestNew(t *testing.T) {
	c, err := New(Config{Runner: newFakeRunner()})
	require.NoError(t, err)
	assert.Equal(t, DefaultBinary, c.Binary())

	c, err = New(Config{Runner: newFakeRunner(), Binary: "pnpm"})
	require.NoError(t, err)
	assert.Equal(t, "pnpm", c.Binary())

	_, err = New(Config{Binary: "npm; rm -rf /"})
	assert.Error(t, err)

	_, err = New(Config{DevPaths: []string{"/dev/$(whoami)"}})
	assert.ErrorIs(t, err, security.ErrShellInjection)
}

func TestCommandEscapesValues(t *testing.T) {
	skipOnWindows(t)
	c, _, _ := newTestClient(t, Config{})

	got := c.command([]string{"install", "--global"}, []string{"it's", "a b"})
	assert.Equal(t, `npm install --global 'it'\''s' 'a b'`, got)
}

func TestRejectionIsLoggedAndCounted(t *testing.T) {
	c, runner, logs := newTestClient(t, Config{})
	before := promtest.ToFloat64(rejectedInputsTotal.WithLabelValues("view", "shell_injection"))

	_, err := c.View(context.Background(), ViewOptions{PackageName: "pkg;rm -rf /"})
	require.Error(t, err)
	assert.True(t, security.IsValidationError(err))
	assert.Empty(t, runner.lines(), "no command may run for rejected input")

	after := promtest.ToFloat64(rejectedInputsTotal.WithLabelValues("view", "shell_injection"))
	assert.Equal(t, before+1, after)
	assert.Contains(t, logs.String(), "rejected input")
	assert.Contains(t, logs.String(), "rule=shell_injection")
}

func TestRunRecordsCommandMetrics(t *testing.T) {
	c, runner, logs := newTestClient(t, Config{})
	runner.respond("npm --version", &cmdutil.Result{Stdout: "10.2.0\n"}, nil)

	before := promtest.ToFloat64(commandsTotal.WithLabelValues("version", outcomeSuccess))
	_, err := c.run(context.Background(), "version", "npm --version", cmdutil.RunOptions{Silent: true})
	require.NoError(t, err)
	assert.Equal(t, before+1, promtest.ToFloat64(commandsTotal.WithLabelValues("version", outcomeSuccess)))
	assert.Contains(t, logs.String(), "running command")

	runner.respond("npm broken", nil, errors.New("boom"))
	failBefore := promtest.ToFloat64(commandsTotal.WithLabelValues("version", outcomeFailure))
	_, err = c.run(context.Background(), "version", "npm broken", cmdutil.RunOptions{})
	require.Error(t, err)
	assert.Equal(t, failBefore+1, promtest.ToFloat64(commandsTotal.WithLabelValues("version", outcomeFailure)))
}

func TestVersions(t *testing.T) {
	c, runner, _ := newTestClient(t, Config{})
	runner.respond("node --version", &cmdutil.Result{Stdout: "v20.11.1\n"}, nil)
	runner.respond("npm --version", &cmdutil.Result{Stdout: "10.2.4\n"}, nil)

	got, err := c.Versions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ToolVersions{Node: "20.11.1", Npm: "10.2.4"}, got)
	assert.Equal(t, []string{"node --version", "npm --version"}, runner.lines())
}

func TestVersionsFailure(t *testing.T) {
	c, runner, _ := newTestClient(t, Config{})
	runner.respond("node --version", &cmdutil.Result{Code: 127, Stderr: "node: not found"}, nil)

	_, err := c.Versions(context.Background())
	var exitErr *cmdutil.ExitError
	require.True(t, errors.As(err, &exitErr), "error = %v", err)
	assert.True(t, strings.Contains(err.Error(), "node --version"))
}
