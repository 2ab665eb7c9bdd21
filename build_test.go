package pak

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMissingSourceAborts(t *testing.T) {
	t.Parallel()

	entries := []BuildEntry{
		{Path: "ok", Data: func() ([]byte, error) { return []byte("fine"), nil }},
		{Path: "gone", Data: func() ([]byte, error) { return nil, fs.ErrNotExist }},
	}
	_, err := Build(context.Background(), entries)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestBuildNilDataFuncAborts(t *testing.T) {
	t.Parallel()

	_, err := Build(context.Background(), []BuildEntry{{Path: "f"}})
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestBuildRejectsOverdeclaredChildCount(t *testing.T) {
	t.Parallel()

	entries := []BuildEntry{
		{Path: "d", Dir: true, ChildCount: 3},
		{Path: "d/only", Data: func() ([]byte, error) { return nil, nil }},
	}
	_, err := Build(context.Background(), entries)
	assert.ErrorIs(t, err, ErrIndexCorrupt)
}

func TestBuildHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := []BuildEntry{
		{Path: "f", Data: func() ([]byte, error) { return make([]byte, 1<<16), nil }},
	}
	_, err := Build(ctx, entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{}
	for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		fsys["dir/"+p] = &fstest.MapFile{Data: bytes.Repeat([]byte(p), 100+len(p))}
	}

	parallel, err := BuildFS(context.Background(), fsys, WithWorkers(8))
	require.NoError(t, err)
	sequential, err := BuildFS(context.Background(), fsys, WithWorkers(1))
	require.NoError(t, err)

	// Offsets are assigned in entry order regardless of which goroutine
	// compressed a payload, so the decoded archives agree entry for entry.
	ap, err := Decode(parallel)
	require.NoError(t, err)
	as, err := Decode(sequential)
	require.NoError(t, err)
	assert.Equal(t, as.Entries(), ap.Entries())
}

func TestBuildFSMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := BuildFS(context.Background(), fstest.MapFS{}, WithWorkers(1))
	require.NoError(t, err, "an empty filesystem is an empty container, not an error")
	_, err = BuildFS(context.Background(), failingFS{})
	require.Error(t, err)
}

func TestBuildAttributesNormalized(t *testing.T) {
	t.Parallel()

	container, err := Build(context.Background(), []BuildEntry{
		// Directory without the bit, file with it: both must be fixed.
		{Path: "d", Dir: true, ChildCount: 1, Attr: 0},
		{Path: "d/f", Attr: FlagDir, Data: func() ([]byte, error) { return []byte("x"), nil }},
	})
	require.NoError(t, err)

	a, err := Decode(container)
	require.NoError(t, err)
	entries := a.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Dir)
	assert.False(t, entries[1].Dir)
}

func TestBuildFile(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "scripts"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "scripts", "a.lua"), []byte("print(1)"), 0o640))

	dest := filepath.Join(t.TempDir(), "out.pak")
	require.NoError(t, BuildFile(context.Background(), dest, src))

	a, err := DecodeFile(dest)
	require.NoError(t, err)
	got, err := a.ReadFile("scripts/a.lua")
	require.NoError(t, err)
	assert.Equal(t, []byte("print(1)"), got)
}

func TestWriteContainer(t *testing.T) {
	t.Parallel()

	container := buildTestContainer(t, map[string][]byte{"f": []byte("x")})
	path := t.TempDir() + "/nested/out.pak"
	require.NoError(t, WriteContainer(path, container))

	a, err := DecodeFile(path)
	require.NoError(t, err)
	got, err := a.ReadFile("f")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

type failingFS struct{}

func (failingFS) Open(string) (fs.File, error) {
	return nil, errors.New("broken filesystem")
}
