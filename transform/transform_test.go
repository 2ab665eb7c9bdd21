package transform

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPipesStdinToStdout(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	c := NewCommand([]string{"cat"}, []string{"cat"})
	out, err := c.Compile(context.Background(), []byte("print('hi')"))
	require.NoError(t, err)
	assert.Equal(t, []byte("print('hi')"), out)
}

func TestCommandReportsStderrOnFailure(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	c := NewCommand([]string{"sh", "-c", "echo boom >&2; exit 3"}, nil)
	_, err := c.Compile(context.Background(), nil)
	require.ErrorIs(t, err, ErrTransform)
	assert.Contains(t, err.Error(), "boom")
}

func TestCommandUnconfiguredDirection(t *testing.T) {
	t.Parallel()

	c := NewCommand([]string{"cat"}, nil)
	_, err := c.Decompile(context.Background(), []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTransform)
}

func TestCommandMissingBinary(t *testing.T) {
	t.Parallel()

	c := NewCommand([]string{"pak-toolchain-that-does-not-exist"}, nil)
	_, err := c.Compile(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTransform)
}

func TestCommandHonorsContext(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCommand([]string{"sleep", "60"}, nil)
	_, err := c.Compile(ctx, nil)
	require.Error(t, err)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX tools required")
	}
}
