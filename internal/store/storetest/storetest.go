// Package storetest provides testing doubles for the backing store:
// a testify mock and a call-counting recorder that wraps a real store.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/harborfs/backend/internal/store"
)

// MockStore is a testify mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Stat(ctx context.Context, path string) (store.Info, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(store.Info), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, path string) ([]string, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Read(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Write(ctx context.Context, path string, data []byte, mode store.WriteMode) error {
	args := m.Called(ctx, path, data, mode)
	return args.Error(0)
}

func (m *MockStore) MakeDir(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockStore) Remove(ctx context.Context, path string, recursive bool) error {
	args := m.Called(ctx, path, recursive)
	return args.Error(0)
}

func (m *MockStore) Rename(ctx context.Context, oldPath, newPath string) error {
	args := m.Called(ctx, oldPath, newPath)
	return args.Error(0)
}

// NewMockStore creates a mock store. Expectations are set by the test.
func NewMockStore(t *testing.T) *MockStore {
	t.Helper()
	return new(MockStore)
}

// Recorder wraps a real store and counts calls per primitive. Used to
// assert that cancelled searches issue no traversal I/O.
type Recorder struct {
	Inner store.Store

	mu    sync.Mutex
	calls map[string]int
}

// NewRecorder wraps inner with call counting.
func NewRecorder(inner store.Store) *Recorder {
	return &Recorder{Inner: inner, calls: map[string]int{}}
}

// Calls returns how many times the named primitive was invoked.
func (r *Recorder) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

func (r *Recorder) record(name string) {
	r.mu.Lock()
	r.calls[name]++
	r.mu.Unlock()
}

func (r *Recorder) Exists(ctx context.Context, path string) (bool, error) {
	r.record("exists")
	return r.Inner.Exists(ctx, path)
}

func (r *Recorder) Stat(ctx context.Context, path string) (store.Info, error) {
	r.record("stat")
	return r.Inner.Stat(ctx, path)
}

func (r *Recorder) List(ctx context.Context, path string) ([]string, error) {
	r.record("list")
	return r.Inner.List(ctx, path)
}

func (r *Recorder) Read(ctx context.Context, path string) ([]byte, error) {
	r.record("read")
	return r.Inner.Read(ctx, path)
}

func (r *Recorder) Write(ctx context.Context, path string, data []byte, mode store.WriteMode) error {
	r.record("write")
	return r.Inner.Write(ctx, path, data, mode)
}

func (r *Recorder) MakeDir(ctx context.Context, path string) error {
	r.record("mkdir")
	return r.Inner.MakeDir(ctx, path)
}

func (r *Recorder) Remove(ctx context.Context, path string, recursive bool) error {
	r.record("remove")
	return r.Inner.Remove(ctx, path, recursive)
}

func (r *Recorder) Rename(ctx context.Context, oldPath, newPath string) error {
	r.record("rename")
	return r.Inner.Rename(ctx, oldPath, newPath)
}
