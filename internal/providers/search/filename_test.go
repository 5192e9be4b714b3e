package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/backend/internal/providers/filesystem"
	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store"
	"github.com/harborfs/backend/internal/store/memory"
	"github.com/harborfs/backend/internal/store/storetest"
)

const testScheme = "harborfs"

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.MakeDir(ctx, "/src/nested"))
	require.NoError(t, s.MakeDir(ctx, "/vendor"))
	require.NoError(t, s.Write(ctx, "/src/a.ts", []byte("let a = 1"), store.ModeTruncate))
	require.NoError(t, s.Write(ctx, "/src/A.TS", nil, store.ModeTruncate))
	require.NoError(t, s.Write(ctx, "/src/b.js", []byte("var b"), store.ModeTruncate))
	require.NoError(t, s.Write(ctx, "/src/nested/c.ts", nil, store.ModeTruncate))
	require.NoError(t, s.Write(ctx, "/vendor/d.ts", nil, store.ModeTruncate))
	return s
}

func paths(files []types.FileID) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestSearchByNameCaseInsensitive(t *testing.T) {
	e := New(testScheme, seedStore(t))

	files, err := e.SearchByName(context.Background(), types.SearchQuery{Pattern: ".ts"}, types.SearchOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"/src/a.ts", "/src/A.TS", "/src/nested/c.ts", "/vendor/d.ts"},
		paths(files),
	)
	for _, f := range files {
		assert.Equal(t, testScheme, f.Scheme)
	}
}

func TestSearchByNameRespectsMaxResults(t *testing.T) {
	e := New(testScheme, seedStore(t))

	files, err := e.SearchByName(context.Background(), types.SearchQuery{Pattern: ".ts"}, types.SearchOptions{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSearchByNameIncludesScopeTraversal(t *testing.T) {
	e := New(testScheme, seedStore(t))

	files, err := e.SearchByName(context.Background(),
		types.SearchQuery{Pattern: ".ts"},
		types.SearchOptions{Includes: []types.FileID{{Scheme: testScheme, Path: "/vendor"}}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"/vendor/d.ts"}, paths(files))
}

func TestSearchByNameIncludeSchemeMismatch(t *testing.T) {
	e := New(testScheme, seedStore(t))

	_, err := e.SearchByName(context.Background(),
		types.SearchQuery{Pattern: "x"},
		types.SearchOptions{Includes: []types.FileID{{Scheme: "file", Path: "/"}}},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, filesystem.ErrUnavailable))
}

func TestSearchByNameExcludeGlobs(t *testing.T) {
	e := New(testScheme, seedStore(t))

	files, err := e.SearchByName(context.Background(),
		types.SearchQuery{Pattern: ".ts"},
		types.SearchOptions{ExcludeGlobs: []string{"/vendor/**", "/src/nested/**"}},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/src/a.ts", "/src/A.TS"}, paths(files))
}

func TestSearchByNameCancelledBeforeStart(t *testing.T) {
	rec := storetest.NewRecorder(seedStore(t))
	e := New(testScheme, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, err := e.SearchByName(ctx, types.SearchQuery{Pattern: ".ts"}, types.SearchOptions{})
	require.NoError(t, err, "cancellation before the first delivery is not an error")
	assert.Empty(t, files)
	assert.Zero(t, rec.Calls("list"), "no traversal I/O after pre-start cancellation")
	assert.Zero(t, rec.Calls("stat"))
}

func TestSearchByNameMatchesRegularFilesOnly(t *testing.T) {
	ms := storetest.NewMockStore(t)
	ctx := context.Background()

	ms.On("List", ctx, "/").Return([]string{"link.ts", "odd.ts", "real.ts"}, nil)
	ms.On("Stat", ctx, "/link.ts").Return(store.Info{Kind: types.KindSymlink}, nil)
	ms.On("Stat", ctx, "/odd.ts").Return(store.Info{Kind: types.KindUnknown}, nil)
	ms.On("Stat", ctx, "/real.ts").Return(store.Info{Kind: types.KindFile}, nil)

	e := New(testScheme, ms)
	files, err := e.SearchByName(ctx, types.SearchQuery{Pattern: ".ts"}, types.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/real.ts"}, paths(files))
	ms.AssertExpectations(t)
}

func TestSearchByNameSkipsUnreadableSubtree(t *testing.T) {
	ms := storetest.NewMockStore(t)
	ctx := context.Background()

	ms.On("List", ctx, "/").Return([]string{"bad", "good.ts"}, nil)
	ms.On("Stat", ctx, "/bad").Return(store.Info{Kind: types.KindDirectory}, nil)
	ms.On("List", ctx, "/bad").Return(nil, store.NewError(store.CodeOther, "/bad", "io error"))
	ms.On("Stat", ctx, "/good.ts").Return(store.Info{Kind: types.KindFile}, nil)

	e := New(testScheme, ms)
	files, err := e.SearchByName(ctx, types.SearchQuery{Pattern: ".ts"}, types.SearchOptions{})
	require.NoError(t, err, "an unreadable subtree never fails the search")
	assert.Equal(t, []string{"/good.ts"}, paths(files))
	ms.AssertExpectations(t)
}
