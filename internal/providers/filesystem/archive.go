package filesystem

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/harborfs/backend/internal/shared/types"
)

// Compression selects the archive compression wrapper.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Export streams a subtree of the virtual store as a tar archive.
// Entries are addressed relative to the export root. Traversal goes
// through the same backing-store primitives as every other operation, so
// an export observes exactly what the provider would serve.
func (p *Provider) Export(ctx context.Context, id types.FileID, comp Compression, w io.Writer) (err error) {
	root, err := p.resolve(id)
	if err != nil {
		return err
	}

	var out io.Writer = w
	switch comp {
	case CompressionNone, "":
	case CompressionGzip:
		gz := gzip.NewWriter(w)
		defer func() {
			if cerr := gz.Close(); err == nil {
				err = cerr
			}
		}()
		out = gz
	case CompressionZstd:
		zw, zerr := zstd.NewWriter(w)
		if zerr != nil {
			return &Error{Code: CodeUnavailable, Message: zerr.Error()}
		}
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		out = zw
	default:
		return &Error{Code: CodeUnavailable, Message: fmt.Sprintf("unsupported compression %q", comp)}
	}

	tw := tar.NewWriter(out)
	defer func() {
		if cerr := tw.Close(); err == nil {
			err = cerr
		}
	}()
	return p.exportTree(ctx, tw, root, ".")
}

func (p *Provider) exportTree(ctx context.Context, tw *tar.Writer, target, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := p.store.Stat(ctx, target)
	if err != nil {
		return Translate(err)
	}
	if info.Kind == types.KindDirectory {
		if rel != "." {
			hdr := &tar.Header{
				Name:     strings.TrimPrefix(rel, "./") + "/",
				Typeflag: tar.TypeDir,
				Mode:     0o755,
				ModTime:  info.Modified,
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
		}
		names, err := p.store.List(ctx, target)
		if err != nil {
			return Translate(err)
		}
		for _, name := range names {
			if err := p.exportTree(ctx, tw, path.Join(target, name), path.Join(rel, name)); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := p.store.Read(ctx, target)
	if err != nil {
		return Translate(err)
	}
	mod := info.Modified
	if mod.IsZero() {
		mod = time.Now()
	}
	hdr := &tar.Header{
		Name:     strings.TrimPrefix(rel, "./"),
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  mod,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := tw.Write(data); err != nil {
		return err
	}
	return nil
}
