package proc

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	requirePOSIX(t)

	c, err := Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo hello; echo oops >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, c.ExitCode)
	assert.Equal(t, "hello\n", c.Stdout)
	assert.Equal(t, "oops\n", c.Stderr)
	assert.False(t, c.Success())
}

func TestRunSuccess(t *testing.T) {
	requirePOSIX(t)

	c, err := Run(context.Background(), Command{Argv: []string{"true"}})
	require.NoError(t, err)
	assert.True(t, c.Success())
}

func TestRunNoShellInterpretation(t *testing.T) {
	requirePOSIX(t)

	c, err := Run(context.Background(), Command{Argv: []string{"echo", "$HOME", "a;b"}})
	require.NoError(t, err)
	assert.Equal(t, "$HOME a;b\n", c.Stdout)
}

func TestRunWorkingDirectory(t *testing.T) {
	requirePOSIX(t)
	dir := t.TempDir()

	c, err := Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo marker > made.txt"},
		Dir:  dir,
	})
	require.NoError(t, err)
	require.True(t, c.Success())
	assert.FileExists(t, filepath.Join(dir, "made.txt"))
}

func TestRunDiscardOutput(t *testing.T) {
	requirePOSIX(t)

	c, err := Run(context.Background(), Command{
		Argv:          []string{"sh", "-c", "echo noisy; exit 7"},
		DiscardOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, c.ExitCode)
	assert.Empty(t, c.Stdout)
}

func TestRunMissingProgram(t *testing.T) {
	_, err := Run(context.Background(), Command{
		Argv: []string{filepath.Join(t.TempDir(), "does-not-exist")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunEmptyCommand(t *testing.T) {
	_, err := Run(context.Background(), Command{})
	require.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	requirePOSIX(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Command{Argv: []string{"sleep", "5"}})
	require.Error(t, err)
}
