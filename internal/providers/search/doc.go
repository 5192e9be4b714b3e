// Package search implements filename and content search over the
// backing store's raw primitives, bypassing the filesystem provider
// facade entirely.
//
// Both engines share one traversal discipline: depth-first, pre-order,
// in backing-store listing order, with cancellation polled before every
// directory listing, every entry, and every emitted match. A failure to
// list or stat a subtree skips that subtree and increments a diagnostic
// counter; the search itself keeps going. The result cap is global
// across all include roots, and once it is hit the shared flag halts
// every remaining file and directory.
//
// Filename search matches names case-insensitively as substrings and
// collects results into a slice. Content search decodes each file as
// text, matches line by line (literal matching reports overlapping
// occurrences), and streams every match to a sink before the traversal
// continues.
package search
