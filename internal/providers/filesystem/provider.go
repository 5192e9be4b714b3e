package filesystem

import (
	"context"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/harborfs/backend/internal/infrastructure/logging"
	"github.com/harborfs/backend/internal/infrastructure/monitoring"
	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store"
)

// FileOperations is the provider contract the host consumes for
// CRUD-style access to the virtual store.
type FileOperations interface {
	Stat(ctx context.Context, id types.FileID) (types.FileStat, error)
	List(ctx context.Context, id types.FileID) ([]types.DirEntry, error)
	Read(ctx context.Context, id types.FileID) ([]byte, error)
	Write(ctx context.Context, id types.FileID, data []byte, opts types.WriteOptions) error
	Remove(ctx context.Context, id types.FileID, opts types.RemoveOptions) error
	Rename(ctx context.Context, oldID, newID types.FileID, opts types.RenameOptions) error
	Copy(ctx context.Context, srcID, dstID types.FileID, opts types.CopyOptions) error
	MakeDirectory(ctx context.Context, id types.FileID) error
}

// Provider adapts the provider contract onto backing-store primitives.
// It derives every stat per call and caches nothing.
type Provider struct {
	scheme  string
	store   store.Store
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a provider registered for the given scheme.
func New(scheme string, st store.Store) *Provider {
	return &Provider{scheme: scheme, store: st, log: logging.NewNop()}
}

// WithLogger attaches a logger.
func (p *Provider) WithLogger(log *logging.Logger) *Provider {
	p.log = log
	return p
}

// WithMetrics attaches a metrics collector.
func (p *Provider) WithMetrics(m *monitoring.Metrics) *Provider {
	p.metrics = m
	return p
}

// Scheme returns the registered provider scheme.
func (p *Provider) Scheme() string { return p.scheme }

// Store exposes the backing store for collaborators that traverse it
// directly, such as the search engines.
func (p *Provider) Store() store.Store { return p.store }

func statOf(info store.Info) types.FileStat {
	return types.FileStat{
		Kind:       info.Kind,
		CreatedAt:  info.Created.UnixMilli(),
		ModifiedAt: info.Modified.UnixMilli(),
		Size:       info.Size,
	}
}

// Stat returns metadata for one entry.
func (p *Provider) Stat(ctx context.Context, id types.FileID) (stat types.FileStat, err error) {
	timer := monitoring.NewTimer(p.metrics, "stat")
	defer func() { timer.Stop(codeOf(err)) }()

	target, err := p.resolve(id)
	if err != nil {
		return types.FileStat{}, err
	}
	info, err := p.store.Stat(ctx, target)
	if err != nil {
		return types.FileStat{}, Translate(err)
	}
	return statOf(info), nil
}

// List returns the immediate children of a directory as (name, kind)
// pairs in backing-store order. Each child is classified by a separate
// stat; any failure aborts the whole call.
func (p *Provider) List(ctx context.Context, id types.FileID) (entries []types.DirEntry, err error) {
	timer := monitoring.NewTimer(p.metrics, "list")
	defer func() { timer.Stop(codeOf(err)) }()

	dir, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	names, err := p.store.List(ctx, dir)
	if err != nil {
		return nil, Translate(err)
	}
	entries = make([]types.DirEntry, 0, len(names))
	for _, name := range names {
		info, err := p.store.Stat(ctx, path.Join(dir, name))
		if err != nil {
			return nil, Translate(err)
		}
		entries = append(entries, types.DirEntry{Name: name, Kind: info.Kind})
	}
	return entries, nil
}

// Read returns the raw bytes of a file.
func (p *Provider) Read(ctx context.Context, id types.FileID) (data []byte, err error) {
	timer := monitoring.NewTimer(p.metrics, "read")
	defer func() { timer.Stop(codeOf(err)) }()

	target, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	data, err = p.store.Read(ctx, target)
	if err != nil {
		return nil, Translate(err)
	}
	return data, nil
}

// Write writes a file. A missing target with Create=false fails NotFound
// before the backing store is touched. Overwrite=false uses
// exclusive-create semantics, Overwrite=true truncates.
func (p *Provider) Write(ctx context.Context, id types.FileID, data []byte, opts types.WriteOptions) (err error) {
	timer := monitoring.NewTimer(p.metrics, "write")
	defer func() { timer.Stop(codeOf(err)) }()

	target, err := p.resolve(id)
	if err != nil {
		return err
	}
	exists, err := p.store.Exists(ctx, target)
	if err != nil {
		return Translate(err)
	}
	if !exists && !opts.Create {
		return &Error{Code: CodeNotFound, Message: target}
	}
	mode := store.ModeTruncate
	if !opts.Overwrite {
		mode = store.ModeExclusive
	}
	if err := p.store.Write(ctx, target, data, mode); err != nil {
		return Translate(err)
	}
	p.log.Debug("wrote file", zap.String("path", target), zap.Int("bytes", len(data)))
	return nil
}

// Remove force-removes an entry. The recursive flag is passed through
// verbatim: removing a non-empty directory without it fails rather than
// silently truncating.
func (p *Provider) Remove(ctx context.Context, id types.FileID, opts types.RemoveOptions) (err error) {
	timer := monitoring.NewTimer(p.metrics, "remove")
	defer func() { timer.Stop(codeOf(err)) }()

	target, err := p.resolve(id)
	if err != nil {
		return err
	}
	if err := p.store.Remove(ctx, target, opts.Recursive); err != nil {
		return Translate(err)
	}
	return nil
}

// Rename moves an entry. With Overwrite, an existing destination is first
// removed recursively and the rename is issued as a second, independent
// step. The sequence is not atomic: a failure between the removal and the
// rename leaves the destination absent and the source unmoved. Known
// limitation of the two-step protocol, not remedied with transactions.
func (p *Provider) Rename(ctx context.Context, oldID, newID types.FileID, opts types.RenameOptions) (err error) {
	timer := monitoring.NewTimer(p.metrics, "rename")
	defer func() { timer.Stop(codeOf(err)) }()

	oldPath, err := p.resolve(oldID)
	if err != nil {
		return err
	}
	newPath, err := p.resolve(newID)
	if err != nil {
		return err
	}
	if opts.Overwrite {
		exists, err := p.store.Exists(ctx, newPath)
		if err != nil {
			return Translate(err)
		}
		if exists {
			if err := p.store.Remove(ctx, newPath, true); err != nil {
				return Translate(err)
			}
		}
	}
	if err := p.store.Rename(ctx, oldPath, newPath); err != nil {
		return Translate(err)
	}
	p.log.Debug("renamed", zap.String("from", oldPath), zap.String("to", newPath))
	return nil
}

// Copy copies a file or directory tree. The destination's parent is
// created on demand; a destination inside the source is rejected. The
// overwrite flag is consulted only once, at the top level, before
// recursion begins; nested destination files are not re-checked.
func (p *Provider) Copy(ctx context.Context, srcID, dstID types.FileID, opts types.CopyOptions) (err error) {
	timer := monitoring.NewTimer(p.metrics, "copy")
	defer func() { timer.Stop(codeOf(err)) }()

	src, err := p.resolve(srcID)
	if err != nil {
		return err
	}
	dst, err := p.resolve(dstID)
	if err != nil {
		return err
	}
	// A destination strictly inside the source would make the tree copy
	// descend into its own output and never terminate.
	sub := src
	if sub != "/" {
		sub += "/"
	}
	if dst != src && strings.HasPrefix(dst, sub) {
		return &Error{Code: CodeUnavailable, Message: "destination " + dst + " is inside source " + src}
	}
	srcExists, err := p.store.Exists(ctx, src)
	if err != nil {
		return Translate(err)
	}
	if !srcExists {
		return &Error{Code: CodeNotFound, Message: src}
	}
	dstExists, err := p.store.Exists(ctx, dst)
	if err != nil {
		return Translate(err)
	}
	if dstExists && !opts.Overwrite {
		return &Error{Code: CodeAlreadyExists, Message: dst}
	}
	if err := p.store.MakeDir(ctx, parentOf(dst)); err != nil {
		return Translate(err)
	}
	return p.copyTree(ctx, src, dst)
}

// copyTree copies one entry, recursing into directories. Nested writes
// always truncate; the overwrite decision was made before recursion.
func (p *Provider) copyTree(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := p.store.Stat(ctx, src)
	if err != nil {
		return Translate(err)
	}
	if info.Kind == types.KindDirectory {
		names, err := p.store.List(ctx, src)
		if err != nil {
			return Translate(err)
		}
		if err := p.store.MakeDir(ctx, dst); err != nil {
			return Translate(err)
		}
		for _, name := range names {
			if err := p.copyTree(ctx, path.Join(src, name), path.Join(dst, name)); err != nil {
				return err
			}
		}
		return nil
	}
	data, err := p.store.Read(ctx, src)
	if err != nil {
		return Translate(err)
	}
	if err := p.store.Write(ctx, dst, data, store.ModeTruncate); err != nil {
		return Translate(err)
	}
	return nil
}

// MakeDirectory creates a directory recursively. Idempotent.
func (p *Provider) MakeDirectory(ctx context.Context, id types.FileID) (err error) {
	timer := monitoring.NewTimer(p.metrics, "mkdir")
	defer func() { timer.Stop(codeOf(err)) }()

	target, err := p.resolve(id)
	if err != nil {
		return err
	}
	if err := p.store.MakeDir(ctx, target); err != nil {
		return Translate(err)
	}
	return nil
}
