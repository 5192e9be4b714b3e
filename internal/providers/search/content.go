package search

import (
	"context"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harborfs/backend/internal/providers/filesystem"
	"github.com/harborfs/backend/internal/shared/types"
)

// Sink receives matches as they are found, before the search completes.
type Sink interface {
	Send(m types.SearchMatch) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(m types.SearchMatch) error

func (f SinkFunc) Send(m types.SearchMatch) error { return f(m) }

// Result reports how a content search ended.
type Result struct {
	LimitHit bool `json:"limit_hit"`
	Skipped  int  `json:"skipped"`
}

// matcher enumerates match ranges on one line, left to right.
type matcher interface {
	find(line string) []types.Range
}

// newMatcher compiles the query once per invocation. Go regexps are
// stateless, so per-file recompilation buys nothing.
func newMatcher(q types.SearchQuery) (matcher, error) {
	if q.IsRegExp {
		pat := q.Pattern
		if !q.IsCaseSensitive {
			pat = "(?i)" + pat
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, err
		}
		return &regexMatcher{re: re}, nil
	}
	needle := q.Pattern
	if !q.IsCaseSensitive {
		// Lower-cased once for the whole traversal.
		needle = strings.ToLower(needle)
	}
	return &literalMatcher{needle: needle, fold: !q.IsCaseSensitive}, nil
}

// regexMatcher reports distinct, non-overlapping matches per line.
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) find(line string) []types.Range {
	idx := m.re.FindAllStringIndex(line, -1)
	if len(idx) == 0 {
		return nil
	}
	out := make([]types.Range, 0, len(idx))
	for _, pair := range idx {
		if pair[0] == pair[1] {
			// Zero-width match carries no reportable column range.
			continue
		}
		out = append(out, types.Range{Start: pair[0], End: pair[1]})
	}
	return out
}

// literalMatcher advances the cursor one byte past the start of the
// previous match, so adjacent and overlapping occurrences are each
// reported as separate matches. Documented behavior, not deduplicated.
type literalMatcher struct {
	needle string
	fold   bool
}

func (m *literalMatcher) find(line string) []types.Range {
	if m.needle == "" {
		return nil
	}
	hay := line
	if m.fold {
		hay = strings.ToLower(line)
	}
	var out []types.Range
	for from := 0; ; {
		i := strings.Index(hay[from:], m.needle)
		if i < 0 {
			break
		}
		start := from + i
		out = append(out, types.Range{Start: start, End: start + len(m.needle)})
		from = start + 1
	}
	return out
}

// splitLines splits on CRLF/LF boundaries.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// SearchByContent performs the same cancellable depth-first traversal as
// SearchByName, additionally reading each file, decoding it as text, and
// matching line by line. Every match is streamed to the sink immediately.
// The moment the reported-match count reaches the cap, the shared
// limit-hit flag halts the file being scanned and every subsequent file
// and directory; no further progress events are emitted. A read or decode
// failure aborts only that file.
func (e *Engine) SearchByContent(ctx context.Context, q types.SearchQuery, opts types.SearchOptions, sink Sink) (res Result, err error) {
	start := time.Now()
	t := newTraversal(opts)
	defer func() {
		e.metrics.RecordSearch("content", time.Since(start), t.results, t.skipped, t.limitHit)
	}()

	roots, err := e.roots(opts)
	if err != nil {
		return Result{}, err
	}
	m, err := newMatcher(q)
	if err != nil {
		return Result{}, &filesystem.Error{Code: filesystem.CodeUnavailable, Message: "invalid pattern: " + err.Error()}
	}
	if ctx.Err() != nil {
		return Result{Skipped: t.skipped}, nil
	}

	for _, root := range roots {
		if err := e.walkContent(ctx, t, root, m, sink); err != nil {
			return Result{LimitHit: t.limitHit, Skipped: t.skipped}, err
		}
		if t.limitHit || ctx.Err() != nil {
			break
		}
	}
	return Result{LimitHit: t.limitHit, Skipped: t.skipped}, nil
}

// walkContent returns an error only when the sink fails; store errors are
// absorbed into the skipped counter at the subtree or file that raised
// them.
func (e *Engine) walkContent(ctx context.Context, t *traversal, dir string, m matcher, sink Sink) error {
	if ctx.Err() != nil || t.limitHit {
		return nil
	}
	names, err := e.store.List(ctx, dir)
	if err != nil {
		e.log.Debug("skipping unreadable subtree", zap.String("path", dir), zap.Error(err))
		t.skipped++
		return nil
	}
	for _, name := range names {
		if ctx.Err() != nil || t.limitHit {
			return nil
		}
		child := path.Join(dir, name)
		if t.excluded(child) {
			continue
		}
		info, err := e.store.Stat(ctx, child)
		if err != nil {
			t.skipped++
			continue
		}
		if info.Kind == types.KindDirectory {
			if err := e.walkContent(ctx, t, child, m, sink); err != nil {
				return err
			}
			continue
		}
		if info.Kind != types.KindFile {
			continue
		}
		if err := e.scanFile(ctx, t, child, m, sink); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) scanFile(ctx context.Context, t *traversal, file string, m matcher, sink Sink) error {
	if ctx.Err() != nil || t.limitHit {
		return nil
	}
	data, err := e.store.Read(ctx, file)
	if err != nil {
		t.skipped++
		return nil
	}
	text, ok := decodeText(data)
	if !ok {
		// Not valid text; the file is skipped without failing the search.
		e.log.Debug("skipping non-text file", zap.String("path", file))
		t.skipped++
		return nil
	}
	id := types.FileID{Scheme: e.scheme, Path: file}
	for lineNo, line := range splitLines(text) {
		if ctx.Err() != nil || t.limitHit {
			return nil
		}
		for _, r := range m.find(line) {
			if ctx.Err() != nil {
				return nil
			}
			match := types.SearchMatch{
				File:    id,
				Line:    lineNo,
				Range:   r,
				Preview: types.Preview{Text: line, Match: r},
			}
			if err := sink.Send(match); err != nil {
				return err
			}
			t.results++
			if t.limit > 0 && t.results >= t.limit {
				t.limitHit = true
				return nil
			}
		}
	}
	return nil
}
