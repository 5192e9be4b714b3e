// Package server wires configuration, the backing store, the filesystem
// provider, the search engines, and the HTTP/WebSocket surface into one
// runnable unit with graceful shutdown.
package server
