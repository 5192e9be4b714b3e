// Package ws streams content-search matches over a WebSocket.
//
// A client sends a "search" frame and receives one "match" frame per
// hit as the traversal finds it, then a terminal "complete" frame with
// the limit-hit flag and the skipped-entry count. A "cancel" frame (or
// a new "search" frame) cancels the search in flight; cancellation is
// observed at the next traversal checkpoint, never mid-frame.
package ws
