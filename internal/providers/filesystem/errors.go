package filesystem

import (
	"errors"
	"fmt"

	"github.com/harborfs/backend/internal/store"
)

// ErrorCode is the closed taxonomy every facade failure belongs to.
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "not-found"
	CodeAlreadyExists ErrorCode = "already-exists"
	CodeIsADirectory  ErrorCode = "is-a-directory"
	CodeUnavailable   ErrorCode = "unavailable"
)

// Error is a translated provider failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match on the code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound      = &Error{Code: CodeNotFound}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists}
	ErrIsADirectory  = &Error{Code: CodeIsADirectory}
	ErrUnavailable   = &Error{Code: CodeUnavailable}
)

// Translate maps a backing-store failure onto the provider taxonomy.
// The "not-a-directory" code folds into NotFound by policy: callers asking
// for /a/b/c where b is a file are told the path does not exist. Codes
// outside the vocabulary become Unavailable carrying the original message,
// never dropped.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var se *store.Error
	if !errors.As(err, &se) {
		return &Error{Code: CodeUnavailable, Message: err.Error()}
	}
	switch se.Code {
	case store.CodeNotFound, store.CodeNotADirectory:
		return &Error{Code: CodeNotFound, Message: se.Path}
	case store.CodeAlreadyExists:
		return &Error{Code: CodeAlreadyExists, Message: se.Path}
	case store.CodeIsADirectory:
		return &Error{Code: CodeIsADirectory, Message: se.Path}
	default:
		return &Error{Code: CodeUnavailable, Message: se.Error()}
	}
}

// codeOf reports the taxonomy code of err for metrics labels, "" when nil.
func codeOf(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	return string(CodeUnavailable)
}
