package filesystem

import (
	"fmt"
	"path"

	"github.com/harborfs/backend/internal/shared/types"
)

// resolve validates the identifier's scheme and normalizes it to an
// absolute store path. A scheme mismatch is a caller error and always
// surfaces as Unavailable carrying the offending scheme; it is never
// swallowed. An empty path defaults to the store root.
func (p *Provider) resolve(id types.FileID) (string, error) {
	if id.Scheme != p.scheme {
		return "", &Error{
			Code:    CodeUnavailable,
			Message: fmt.Sprintf("unexpected scheme %q, provider is registered for %q", id.Scheme, p.scheme),
		}
	}
	if id.Path == "" {
		return "/", nil
	}
	return path.Clean("/" + id.Path), nil
}

// parentOf returns the parent directory of a store path.
func parentOf(p string) string {
	return path.Dir(p)
}
