// Package filesystem adapts the provider contract a host application
// consumes onto the primitives of a backing store.
//
// The provider implements stat, list, read, write, remove, rename, copy,
// and makeDirectory with POSIX-adjacent semantics: exclusive-create
// writes, recursive delete, rename-with-overwrite (two-step, non-atomic),
// recursive tree copy with parent auto-creation, and idempotent recursive
// mkdir. Every backing-store failure is translated into a closed error
// taxonomy (NotFound, AlreadyExists, IsADirectory, Unavailable) and
// re-raised; the facade never swallows an error.
//
// Change-notification subscriptions are accepted but never fire; the
// backend emits no file-change events.
package filesystem
