package search

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/harborfs/backend/internal/shared/types"
)

// traversal is the per-invocation mutable state threaded through every
// recursive step: the result counter, the shared limit-hit flag, and the
// diagnostic counter of skipped entries. One instance is created per
// search invocation and discarded at completion; it is never shared
// across concurrent invocations, so no synchronization is needed.
type traversal struct {
	limit    int // <= 0 means unlimited
	results  int
	limitHit bool
	skipped  int
	excludes []string
}

func newTraversal(opts types.SearchOptions) *traversal {
	return &traversal{limit: opts.MaxResults, excludes: opts.ExcludeGlobs}
}

// capReached reports whether the result cap has been reached. Checked
// before every directory descent and after every appended match.
func (t *traversal) capReached() bool {
	return t.limit > 0 && t.results >= t.limit
}

// excluded reports whether a store path matches any exclude glob.
// Malformed patterns never match.
func (t *traversal) excluded(p string) bool {
	for _, glob := range t.excludes {
		if ok, err := doublestar.Match(glob, p); err == nil && ok {
			return true
		}
	}
	return false
}
