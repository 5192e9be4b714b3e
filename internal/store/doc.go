// Package store defines the primitive contract the HarborFS provider
// adapts: existence check, stat, directory listing, read, write with
// exclusive/truncate modes, recursive mkdir, recursive remove, and rename.
//
// Backends tag every failure with one of a small code vocabulary
// (not-found, already-exists, is-a-directory, not-a-directory, other) so
// the provider can translate them into its public error taxonomy without
// inspecting backend-specific error strings.
//
// Two backends ship with the server:
//   - memory: an in-process tree store, the default backend and the test
//     substrate
//   - disk: a local directory jailed under a configured root
package store
