// Package types defines the shared data model for the HarborFS backend:
// file identifiers, stat results, directory entries, operation options,
// and the search query/result shapes exchanged between the provider
// facade, the search engines, and the HTTP surface.
package types
