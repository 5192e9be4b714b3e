package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborfs/backend/internal/shared/types"
)

// Code is the small error vocabulary every backing-store failure is
// tagged with. Anything a backend cannot express maps to CodeOther.
type Code string

const (
	CodeNotFound      Code = "not-found"
	CodeAlreadyExists Code = "already-exists"
	CodeIsADirectory  Code = "is-a-directory"
	CodeNotADirectory Code = "not-a-directory"
	CodeOther         Code = "other"
)

// Error is a backing-store failure tagged with a Code.
type Error struct {
	Code    Code
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

// NewError builds a tagged store error.
func NewError(code Code, path, message string) *Error {
	return &Error{Code: code, Path: path, Message: message}
}

// WriteMode selects between exclusive-create and truncating writes.
type WriteMode int

const (
	// ModeTruncate creates the file if absent and replaces its content
	// if present.
	ModeTruncate WriteMode = iota
	// ModeExclusive fails with already-exists if the target is present.
	ModeExclusive
)

// Info is the stat result a backend reports for one entry.
type Info struct {
	Kind     types.FileKind
	Created  time.Time
	Modified time.Time
	Size     int64
}

// Store is the primitive contract required from the backing persistent
// store. Paths are absolute posix-style. Every failure is an *Error.
type Store interface {
	Exists(ctx context.Context, path string) (bool, error)
	Stat(ctx context.Context, path string) (Info, error)
	List(ctx context.Context, path string) ([]string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte, mode WriteMode) error
	MakeDir(ctx context.Context, path string) error
	Remove(ctx context.Context, path string, recursive bool) error
	Rename(ctx context.Context, oldPath, newPath string) error
}

// CodeOf extracts the vocabulary code from err, or CodeOther when err is
// not a tagged store error.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeOther
}
