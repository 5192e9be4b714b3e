package disk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.MakeDir(ctx, "/docs"))
	require.NoError(t, s.Write(ctx, "/docs/a.txt", []byte("hello"), store.ModeTruncate))

	data, err := s.Read(ctx, "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestWriteExclusiveFailsOnExisting(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/a.txt", []byte("one"), store.ModeTruncate))
	err := s.Write(ctx, "/a.txt", []byte("two"), store.ModeExclusive)
	assert.Equal(t, store.CodeAlreadyExists, store.CodeOf(err))
}

func TestReadMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.Read(context.Background(), "/ghost.txt")
	assert.Equal(t, store.CodeNotFound, store.CodeOf(err))
}

func TestReadDirectoryFails(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.MakeDir(ctx, "/dir"))
	_, err := s.Read(ctx, "/dir")
	assert.Equal(t, store.CodeIsADirectory, store.CodeOf(err))
}

func TestStatKinds(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.MakeDir(ctx, "/dir"))
	require.NoError(t, s.Write(ctx, "/f.txt", []byte("abc"), store.ModeTruncate))

	info, err := s.Stat(ctx, "/dir")
	require.NoError(t, err)
	assert.Equal(t, types.KindDirectory, info.Kind)

	info, err = s.Stat(ctx, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, types.KindFile, info.Kind)
	assert.Equal(t, int64(3), info.Size)
}

func TestRemoveNonEmptyDirRequiresRecursive(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.MakeDir(ctx, "/dir"))
	require.NoError(t, s.Write(ctx, "/dir/f.txt", nil, store.ModeTruncate))

	err := s.Remove(ctx, "/dir", false)
	require.Error(t, err)

	require.NoError(t, s.Remove(ctx, "/dir", true))
	exists, err := s.Exists(ctx, "/dir")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRenameFailsWhenDestinationExists(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/src.txt", []byte("src"), store.ModeTruncate))
	require.NoError(t, s.Write(ctx, "/dst.txt", []byte("dst"), store.ModeTruncate))

	err := s.Rename(ctx, "/src.txt", "/dst.txt")
	assert.Equal(t, store.CodeAlreadyExists, store.CodeOf(err))
}

func TestPathsAreJailed(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/../../escape.txt", []byte("x"), store.ModeTruncate))

	// The traversal attempt lands inside the root instead of above it.
	data, err := s.Read(ctx, "/escape.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestUsageCountsFiles(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.MakeDir(ctx, "/a/b"))
	require.NoError(t, s.Write(ctx, "/a/one.txt", []byte("12345"), store.ModeTruncate))
	require.NoError(t, s.Write(ctx, "/a/b/two.txt", []byte("123"), store.ModeTruncate))

	files, bytes, err := s.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), files)
	assert.Equal(t, int64(8), bytes)
}
