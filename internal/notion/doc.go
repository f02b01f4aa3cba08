// Package notion is the transport for the remote content API.
//
// Client issues the four read calls the build needs (database query, block
// children listing, single block and database retrieval). Each call runs under
// the retry policy: network failures and 5xx responses are retried with backoff,
// any 4xx response fails immediately. Paginate drains cursor-based listings.
//
// SnapshotDir stores raw child lists on disk so a build can run without network
// access.
package notion
