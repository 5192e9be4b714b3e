package memory

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harborfs/backend/internal/shared/types"
	"github.com/harborfs/backend/internal/store"
)

// node is one entry in the tree. children is nil for files.
type node struct {
	data     []byte
	children map[string]*node
	created  time.Time
	modified time.Time
}

func (n *node) isDir() bool { return n.children != nil }

// Store is an in-process tree store. It is safe for concurrent use; every
// primitive holds the lock for the duration of the call, so no two
// operations observe a half-applied mutation.
type Store struct {
	mu    sync.RWMutex
	root  *node
	clock func() time.Time
}

// New creates an empty store with a "/" root directory.
func New() *Store {
	s := &Store{clock: time.Now}
	now := s.clock()
	s.root = &node{children: map[string]*node{}, created: now, modified: now}
	return s
}

// WithClock overrides the timestamp source. Used by tests.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// segments splits a cleaned absolute path into its components.
func segments(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// lookup walks to the node at p. Returns nil when any component is missing
// or a non-final component is a file.
func (s *Store) lookup(p string) *node {
	cur := s.root
	for _, seg := range segments(p) {
		if !cur.isDir() {
			return nil
		}
		next, ok := cur.children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// lookupParent walks to the parent directory of p and returns it with the
// final path component. The returned error carries not-found or
// not-a-directory depending on what broke the walk.
func (s *Store) lookupParent(p string) (*node, string, error) {
	segs := segments(p)
	if len(segs) == 0 {
		return nil, "", store.NewError(store.CodeOther, p, "root has no parent")
	}
	cur := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.children[seg]
		if !ok {
			return nil, "", store.NewError(store.CodeNotFound, p, "missing parent component")
		}
		if !next.isDir() {
			return nil, "", store.NewError(store.CodeNotADirectory, p, "parent component is a file")
		}
		cur = next
	}
	return cur, segs[len(segs)-1], nil
}

func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(p) != nil, nil
}

func (s *Store) Stat(ctx context.Context, p string) (store.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.lookup(p)
	if n == nil {
		return store.Info{}, store.NewError(store.CodeNotFound, p, "")
	}
	kind := types.KindFile
	if n.isDir() {
		kind = types.KindDirectory
	}
	return store.Info{
		Kind:     kind,
		Created:  n.created,
		Modified: n.modified,
		Size:     int64(len(n.data)),
	}, nil
}

func (s *Store) List(ctx context.Context, p string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.lookup(p)
	if n == nil {
		return nil, store.NewError(store.CodeNotFound, p, "")
	}
	if !n.isDir() {
		return nil, store.NewError(store.CodeNotADirectory, p, "")
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Read(ctx context.Context, p string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.lookup(p)
	if n == nil {
		return nil, store.NewError(store.CodeNotFound, p, "")
	}
	if n.isDir() {
		return nil, store.NewError(store.CodeIsADirectory, p, "")
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out, nil
}

func (s *Store) Write(ctx context.Context, p string, data []byte, mode store.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, name, err := s.lookupParent(p)
	if err != nil {
		return err
	}
	if existing, ok := parent.children[name]; ok {
		if existing.isDir() {
			return store.NewError(store.CodeIsADirectory, p, "")
		}
		if mode == store.ModeExclusive {
			return store.NewError(store.CodeAlreadyExists, p, "")
		}
		existing.data = append(existing.data[:0], data...)
		existing.modified = s.clock()
		parent.modified = existing.modified
		return nil
	}
	now := s.clock()
	parent.children[name] = &node{data: append([]byte(nil), data...), created: now, modified: now}
	parent.modified = now
	return nil
}

func (s *Store) MakeDir(ctx context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.root
	for _, seg := range segments(p) {
		next, ok := cur.children[seg]
		if !ok {
			now := s.clock()
			next = &node{children: map[string]*node{}, created: now, modified: now}
			cur.children[seg] = next
			cur.modified = now
		} else if !next.isDir() {
			return store.NewError(store.CodeNotADirectory, p, "path component is a file")
		}
		cur = next
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, p string, recursive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, name, err := s.lookupParent(p)
	if err != nil {
		return err
	}
	n, ok := parent.children[name]
	if !ok {
		return store.NewError(store.CodeNotFound, p, "")
	}
	if n.isDir() && len(n.children) > 0 && !recursive {
		return store.NewError(store.CodeOther, p, "directory not empty")
	}
	delete(parent.children, name)
	parent.modified = s.clock()
	return nil
}

func (s *Store) Rename(ctx context.Context, oldPath, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldParent, oldName, err := s.lookupParent(oldPath)
	if err != nil {
		return err
	}
	n, ok := oldParent.children[oldName]
	if !ok {
		return store.NewError(store.CodeNotFound, oldPath, "")
	}
	newParent, newName, err := s.lookupParent(newPath)
	if err != nil {
		return err
	}
	if _, exists := newParent.children[newName]; exists {
		return store.NewError(store.CodeAlreadyExists, newPath, "")
	}
	delete(oldParent.children, oldName)
	newParent.children[newName] = n
	now := s.clock()
	oldParent.modified = now
	newParent.modified = now
	n.modified = now
	return nil
}
