package filesystem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store/memory"
)

const testScheme = "harborfs"

func newProvider(t *testing.T) *Provider {
	t.Helper()
	return New(testScheme, memory.New())
}

func fid(p string) types.FileID {
	return types.FileID{Scheme: testScheme, Path: p}
}

func TestWriteReadRoundTrip(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/docs")))
	require.NoError(t, p.Write(ctx, fid("/docs/a.txt"), []byte("hello"), types.WriteOptions{Create: true, Overwrite: true}))

	data, err := p.Read(ctx, fid("/docs/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestWriteWithoutCreateFailsOnMissing(t *testing.T) {
	p := newProvider(t)
	err := p.Write(context.Background(), fid("/missing.txt"), []byte("x"), types.WriteOptions{Create: false, Overwrite: true})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWriteWithoutOverwriteFailsOnExisting(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/a.txt"), []byte("one"), types.WriteOptions{Create: true, Overwrite: true}))
	err := p.Write(ctx, fid("/a.txt"), []byte("two"), types.WriteOptions{Create: true, Overwrite: false})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	data, err := p.Read(ctx, fid("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)
}

func TestWriteOverwriteTruncates(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/a.txt"), []byte("a longer body"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.Write(ctx, fid("/a.txt"), []byte("s"), types.WriteOptions{Create: true, Overwrite: true}))

	data, err := p.Read(ctx, fid("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("s"), data)
}

func TestReadDirectoryFails(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/dir")))
	_, err := p.Read(ctx, fid("/dir"))
	assert.True(t, errors.Is(err, ErrIsADirectory))
}

func TestStatMissing(t *testing.T) {
	p := newProvider(t)
	_, err := p.Stat(context.Background(), fid("/ghost"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatThroughFileComponentReportsNotFound(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/blocker"), []byte("f"), types.WriteOptions{Create: true, Overwrite: true}))
	_, err := p.Stat(ctx, fid("/blocker/child"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListClassifiesEntries(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/root/sub")))
	require.NoError(t, p.Write(ctx, fid("/root/f.txt"), nil, types.WriteOptions{Create: true, Overwrite: true}))

	entries, err := p.List(ctx, fid("/root"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, types.DirEntry{Name: "f.txt", Kind: types.KindFile}, entries[0])
	assert.Equal(t, types.DirEntry{Name: "sub", Kind: types.KindDirectory}, entries[1])
}

func TestRemoveNonRecursiveFailsOnNonEmptyDir(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/dir")))
	require.NoError(t, p.Write(ctx, fid("/dir/f.txt"), nil, types.WriteOptions{Create: true, Overwrite: true}))

	err := p.Remove(ctx, fid("/dir"), types.RemoveOptions{Recursive: false})
	assert.True(t, errors.Is(err, ErrUnavailable), "the store's refusal surfaces, never a silent partial delete")

	require.NoError(t, p.Remove(ctx, fid("/dir"), types.RemoveOptions{Recursive: true}))
	_, err = p.Stat(ctx, fid("/dir"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRenameWithoutOverwriteFailsOnExisting(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/src.txt"), []byte("src"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.Write(ctx, fid("/dst.txt"), []byte("dst"), types.WriteOptions{Create: true, Overwrite: true}))

	err := p.Rename(ctx, fid("/src.txt"), fid("/dst.txt"), types.RenameOptions{Overwrite: false})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestRenameWithOverwriteReplacesDestination(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/src.txt"), []byte("src"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.Write(ctx, fid("/dst.txt"), []byte("dst"), types.WriteOptions{Create: true, Overwrite: true}))

	require.NoError(t, p.Rename(ctx, fid("/src.txt"), fid("/dst.txt"), types.RenameOptions{Overwrite: true}))

	data, err := p.Read(ctx, fid("/dst.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("src"), data)

	_, err = p.Stat(ctx, fid("/src.txt"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRenameOverwriteRemovesDirectoryDestination(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/src.txt"), []byte("src"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.MakeDirectory(ctx, fid("/dst")))
	require.NoError(t, p.Write(ctx, fid("/dst/inner.txt"), []byte("x"), types.WriteOptions{Create: true, Overwrite: true}))

	require.NoError(t, p.Rename(ctx, fid("/src.txt"), fid("/dst"), types.RenameOptions{Overwrite: true}))

	data, err := p.Read(ctx, fid("/dst"))
	require.NoError(t, err)
	assert.Equal(t, []byte("src"), data)
}

func TestCopyFileCreatesParent(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/a.txt"), []byte("body"), types.WriteOptions{Create: true, Overwrite: true}))

	require.NoError(t, p.Copy(ctx, fid("/a.txt"), fid("/deep/nested/b.txt"), types.CopyOptions{}))

	data, err := p.Read(ctx, fid("/deep/nested/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), data)
}

func TestCopyMissingSource(t *testing.T) {
	p := newProvider(t)
	err := p.Copy(context.Background(), fid("/ghost"), fid("/dst"), types.CopyOptions{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCopyWithoutOverwriteFailsOnExisting(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, fid("/a.txt"), []byte("a"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.Write(ctx, fid("/b.txt"), []byte("b"), types.WriteOptions{Create: true, Overwrite: true}))

	err := p.Copy(ctx, fid("/a.txt"), fid("/b.txt"), types.CopyOptions{Overwrite: false})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestCopyDirectoryTree(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/src/sub")))
	require.NoError(t, p.Write(ctx, fid("/src/top.txt"), []byte("top"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.Write(ctx, fid("/src/sub/deep.txt"), []byte("deep"), types.WriteOptions{Create: true, Overwrite: true}))

	require.NoError(t, p.Copy(ctx, fid("/src"), fid("/dst"), types.CopyOptions{}))

	data, err := p.Read(ctx, fid("/dst/top.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("top"), data)

	data, err = p.Read(ctx, fid("/dst/sub/deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("deep"), data)

	// Source is untouched.
	data, err = p.Read(ctx, fid("/src/top.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("top"), data)
}

// The overwrite flag is consulted only at the top level: nested files in
// an existing destination tree are replaced without a second check.
func TestCopyTreeOverwriteCheckIsTopLevelOnly(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/src")))
	require.NoError(t, p.Write(ctx, fid("/src/f.txt"), []byte("new"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.MakeDirectory(ctx, fid("/dst")))
	require.NoError(t, p.Write(ctx, fid("/dst/f.txt"), []byte("old"), types.WriteOptions{Create: true, Overwrite: true}))

	require.NoError(t, p.Copy(ctx, fid("/src"), fid("/dst"), types.CopyOptions{Overwrite: true}))

	data, err := p.Read(ctx, fid("/dst/f.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

// A destination inside the source would have the tree copy descend into
// its own output; such calls are rejected up front and leave the source
// untouched.
func TestCopyIntoOwnSubtreeFails(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/src/sub")))
	require.NoError(t, p.Write(ctx, fid("/src/f.txt"), []byte("f"), types.WriteOptions{Create: true, Overwrite: true}))

	err := p.Copy(ctx, fid("/src"), fid("/src/inner"), types.CopyOptions{})
	assert.True(t, errors.Is(err, ErrUnavailable))

	err = p.Copy(ctx, fid("/src"), fid("/src/sub/inner"), types.CopyOptions{Overwrite: true})
	assert.True(t, errors.Is(err, ErrUnavailable))

	entries, err := p.List(ctx, fid("/src"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "rejected copies create nothing")
}

func TestCopyHonorsCancellation(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/src")))
	require.NoError(t, p.Write(ctx, fid("/src/f.txt"), []byte("f"), types.WriteOptions{Create: true, Overwrite: true}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := p.Copy(cancelled, fid("/src"), fid("/dst"), types.CopyOptions{})
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = p.Stat(ctx, fid("/dst"))
	assert.True(t, errors.Is(err, ErrNotFound), "no partial tree materializes after cancellation")
}

func TestMakeDirectoryIdempotent(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.MakeDirectory(ctx, fid("/a/b/c")))
	require.NoError(t, p.MakeDirectory(ctx, fid("/a/b/c")))

	stat, err := p.Stat(ctx, fid("/a/b/c"))
	require.NoError(t, err)
	assert.Equal(t, types.KindDirectory, stat.Kind)
}

func TestWatchValidatesScheme(t *testing.T) {
	p := newProvider(t)

	sub, err := p.Watch(fid("/some/file"), true)
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	sub.Close()

	_, err = p.Watch(types.FileID{Scheme: "wrong", Path: "/f"}, false)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
