// Package monitoring provides Prometheus metrics for the HarborFS backend.
//
// Metrics cover the HTTP surface, every file-operation of the provider
// facade, and the two search engines. The skipped-entries counter exists
// specifically to make the search engines' swallow-and-continue policy
// observable: inaccessible subtrees and undecodable files increment it
// instead of failing the search.
//
// A nil *Metrics records nothing, so packages accept metrics optionally.
package monitoring
