package search

import (
	"context"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harborfs/backend/internal/infrastructure/logging"
	"github.com/harborfs/backend/internal/infrastructure/monitoring"
	"github.com/harborfs/backend/internal/providers/filesystem"
	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store"
)

// FileSearcher finds files whose names contain a pattern.
type FileSearcher interface {
	SearchByName(ctx context.Context, q types.SearchQuery, opts types.SearchOptions) ([]types.FileID, error)
}

// ContentSearcher finds pattern occurrences inside file contents,
// streaming each match to a sink.
type ContentSearcher interface {
	SearchByContent(ctx context.Context, q types.SearchQuery, opts types.SearchOptions, sink Sink) (Result, error)
}

// Engine implements both search contracts over raw backing-store
// primitives (list, stat, read). It holds no per-invocation state.
type Engine struct {
	scheme  string
	store   store.Store
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a search engine for the given provider scheme.
func New(scheme string, st store.Store) *Engine {
	return &Engine{scheme: scheme, store: st, log: logging.NewNop()}
}

// WithLogger attaches a logger.
func (e *Engine) WithLogger(log *logging.Logger) *Engine {
	e.log = log
	return e
}

// WithMetrics attaches a metrics collector.
func (e *Engine) WithMetrics(m *monitoring.Metrics) *Engine {
	e.metrics = m
	return e
}

// roots resolves the include paths of a search, defaulting to the store
// root when none are given. A scheme mismatch on an include path is a
// caller error and fails the invocation.
func (e *Engine) roots(opts types.SearchOptions) ([]string, error) {
	if len(opts.Includes) == 0 {
		return []string{"/"}, nil
	}
	out := make([]string, 0, len(opts.Includes))
	for _, id := range opts.Includes {
		if id.Scheme != e.scheme {
			return nil, &filesystem.Error{
				Code:    filesystem.CodeUnavailable,
				Message: "unexpected scheme " + strconv.Quote(id.Scheme),
			}
		}
		p := id.Path
		if p == "" {
			p = "/"
		}
		out = append(out, path.Clean("/"+p))
	}
	return out, nil
}

// SearchByName performs a cancellable depth-first traversal matching file
// names case-insensitively against the pattern as a substring. Directory
// names are never filtered; directories are always descended into. Only
// regular files can match; symlinks and unknown entries are passed over.
// An error while listing a subtree skips only that subtree.
func (e *Engine) SearchByName(ctx context.Context, q types.SearchQuery, opts types.SearchOptions) (results []types.FileID, err error) {
	start := time.Now()
	t := newTraversal(opts)
	results = []types.FileID{}
	defer func() {
		e.metrics.RecordSearch("filename", time.Since(start), len(results), t.skipped, t.limitHit)
	}()

	roots, err := e.roots(opts)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return results, nil
	}

	// Lower-cased once for the whole traversal.
	needle := strings.ToLower(q.Pattern)
	for _, root := range roots {
		e.walkNames(ctx, t, root, needle, &results)
		if t.capReached() || ctx.Err() != nil {
			break
		}
	}
	return results, nil
}

func (e *Engine) walkNames(ctx context.Context, t *traversal, dir, needle string, out *[]types.FileID) {
	if ctx.Err() != nil || t.capReached() {
		return
	}
	names, err := e.store.List(ctx, dir)
	if err != nil {
		// Resilience over completeness: an inaccessible subtree is
		// skipped, siblings keep going.
		e.log.Debug("skipping unreadable subtree", zap.String("path", dir), zap.Error(err))
		t.skipped++
		return
	}
	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		child := path.Join(dir, name)
		if t.excluded(child) {
			continue
		}
		info, err := e.store.Stat(ctx, child)
		if err != nil {
			t.skipped++
			continue
		}
		if info.Kind == types.KindDirectory {
			if t.capReached() {
				return
			}
			e.walkNames(ctx, t, child, needle, out)
			continue
		}
		if info.Kind != types.KindFile {
			continue
		}
		if strings.Contains(strings.ToLower(name), needle) {
			*out = append(*out, types.FileID{Scheme: e.scheme, Path: child})
			t.results++
			if t.capReached() {
				t.limitHit = true
				return
			}
		}
	}
}
