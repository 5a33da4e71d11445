// Package database provides SQLite-based storage for policyscan.
//
// ResultDB keeps:
//   - the history of completed analyses
//   - a running risk average per company or platform
//   - a time-limited cache of serialized results
//   - per-session activity
//
// SQLite is used through modernc.org/sqlite, so the binary stays CGO-free
// and the whole store is a single file under the user's data directory.
// Writes go through one connection, which makes ResultDB safe for
// concurrent use.
package database
