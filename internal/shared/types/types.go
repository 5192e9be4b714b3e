package types

// FileKind classifies a store entry.
type FileKind string

const (
	KindFile      FileKind = "file"
	KindDirectory FileKind = "directory"
	KindSymlink   FileKind = "symlink"
	KindUnknown   FileKind = "unknown"
)

// FileID identifies a file in the virtual store. Path is posix-style and
// always begins with "/"; Scheme must match the provider's registered scheme.
type FileID struct {
	Scheme string `json:"scheme"`
	Path   string `json:"path"`
}

// String renders the identifier as scheme://path.
func (id FileID) String() string {
	return id.Scheme + "://" + id.Path
}

// FileStat is per-call metadata derived from the backing store, never cached.
type FileStat struct {
	Kind       FileKind `json:"kind"`
	CreatedAt  int64    `json:"created_at"`  // unix milliseconds
	ModifiedAt int64    `json:"modified_at"` // unix milliseconds
	Size       int64    `json:"size"`
}

// DirEntry is a (name, kind) pair returned by List in backing-store order.
type DirEntry struct {
	Name string   `json:"name"`
	Kind FileKind `json:"kind"`
}

// WriteOptions controls Write behavior.
type WriteOptions struct {
	Create    bool `json:"create"`
	Overwrite bool `json:"overwrite"`
}

// RemoveOptions controls Remove behavior.
type RemoveOptions struct {
	Recursive bool `json:"recursive"`
}

// RenameOptions controls Rename behavior.
type RenameOptions struct {
	Overwrite bool `json:"overwrite"`
}

// CopyOptions controls Copy behavior. Overwrite is consulted only at the
// top level, before recursion into a directory tree begins.
type CopyOptions struct {
	Overwrite bool `json:"overwrite"`
}

// SearchQuery describes what to look for.
type SearchQuery struct {
	Pattern         string `json:"pattern"`
	IsRegExp        bool   `json:"is_regexp"`
	IsCaseSensitive bool   `json:"is_case_sensitive"`
}

// SearchOptions bounds a search invocation. Empty Includes means the store
// root. MaxResults <= 0 means unlimited. ExcludeGlobs are doublestar
// patterns matched against store paths; matching entries are pruned.
type SearchOptions struct {
	Includes     []FileID `json:"includes,omitempty"`
	ExcludeGlobs []string `json:"exclude_globs,omitempty"`
	MaxResults   int      `json:"max_results,omitempty"`
}

// Range is a half-open [Start, End) column range within a line.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Preview carries the full original line a match was found on, plus the
// match range relative to that text.
type Preview struct {
	Text  string `json:"text"`
	Match Range  `json:"match"`
}

// SearchMatch is one content-search hit, streamed as it is found.
type SearchMatch struct {
	File    FileID  `json:"file"`
	Line    int     `json:"line"` // 0-based
	Range   Range   `json:"range"`
	Preview Preview `json:"preview"`
}
