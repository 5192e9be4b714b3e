package disk

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charlievieth/fastwalk"

	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store"
)

// Store exposes a local directory as a backing store. All virtual paths
// are jailed under Root; ".." components cannot escape it because every
// path is cleaned against "/" before joining.
type Store struct {
	root string
}

// New creates a disk store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, store.NewError(store.CodeOther, dir, err.Error())
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, translate(dir, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the host directory backing the store.
func (s *Store) Root() string { return s.root }

// hostPath maps a virtual absolute path onto the jail.
func (s *Store) hostPath(p string) string {
	clean := path.Clean("/" + p)
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
}

// translate maps os errors onto the store code vocabulary.
func translate(p string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return store.NewError(store.CodeNotFound, p, err.Error())
	case errors.Is(err, fs.ErrExist):
		return store.NewError(store.CodeAlreadyExists, p, err.Error())
	case errors.Is(err, syscall.EISDIR):
		return store.NewError(store.CodeIsADirectory, p, err.Error())
	case errors.Is(err, syscall.ENOTDIR):
		return store.NewError(store.CodeNotADirectory, p, err.Error())
	default:
		return store.NewError(store.CodeOther, p, err.Error())
	}
}

func kindOf(mode fs.FileMode) types.FileKind {
	switch {
	case mode.IsDir():
		return types.KindDirectory
	case mode&fs.ModeSymlink != 0:
		return types.KindSymlink
	case mode.IsRegular():
		return types.KindFile
	default:
		return types.KindUnknown
	}
}

func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	_, err := os.Lstat(s.hostPath(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, translate(p, err)
}

func (s *Store) Stat(ctx context.Context, p string) (store.Info, error) {
	fi, err := os.Lstat(s.hostPath(p))
	if err != nil {
		return store.Info{}, translate(p, err)
	}
	// Creation time is not portable; modification time stands in for both.
	return store.Info{
		Kind:     kindOf(fi.Mode()),
		Created:  fi.ModTime(),
		Modified: fi.ModTime(),
		Size:     fi.Size(),
	}, nil
}

func (s *Store) List(ctx context.Context, p string) ([]string, error) {
	entries, err := os.ReadDir(s.hostPath(p))
	if err != nil {
		return nil, translate(p, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (s *Store) Read(ctx context.Context, p string) ([]byte, error) {
	host := s.hostPath(p)
	fi, err := os.Lstat(host)
	if err != nil {
		return nil, translate(p, err)
	}
	if fi.IsDir() {
		return nil, store.NewError(store.CodeIsADirectory, p, "")
	}
	data, err := os.ReadFile(host)
	if err != nil {
		return nil, translate(p, err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, p string, data []byte, mode store.WriteMode) error {
	host := s.hostPath(p)
	if fi, err := os.Lstat(host); err == nil && fi.IsDir() {
		return store.NewError(store.CodeIsADirectory, p, "")
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == store.ModeExclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(host, flags, 0o644)
	if err != nil {
		return translate(p, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return translate(p, err)
	}
	if err := f.Close(); err != nil {
		return translate(p, err)
	}
	return nil
}

func (s *Store) MakeDir(ctx context.Context, p string) error {
	if err := os.MkdirAll(s.hostPath(p), 0o755); err != nil {
		return translate(p, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, p string, recursive bool) error {
	host := s.hostPath(p)
	if _, err := os.Lstat(host); err != nil {
		return translate(p, err)
	}
	if recursive {
		if err := os.RemoveAll(host); err != nil {
			return translate(p, err)
		}
		return nil
	}
	if err := os.Remove(host); err != nil {
		return translate(p, err)
	}
	return nil
}

func (s *Store) Rename(ctx context.Context, oldPath, newPath string) error {
	newHost := s.hostPath(newPath)
	// os.Rename silently replaces existing files; the store contract wants
	// already-exists so the provider owns overwrite semantics.
	if _, err := os.Lstat(newHost); err == nil {
		return store.NewError(store.CodeAlreadyExists, newPath, "")
	}
	if err := os.Rename(s.hostPath(oldPath), newHost); err != nil {
		return translate(oldPath, err)
	}
	return nil
}

// Usage reports total file count and bytes under the jail. It walks with
// fastwalk and feeds the monitoring gauges; entries that fail to stat are
// skipped.
func (s *Store) Usage(ctx context.Context) (files int64, bytes int64, err error) {
	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, s.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		bytes += info.Size()
		return nil
	})
	if walkErr != nil {
		return 0, 0, store.NewError(store.CodeOther, "/", walkErr.Error())
	}
	return files, bytes, nil
}
