// Package database implements the SQLite-backed metadata index.
//
// The index maps sidecar paths to fingerprints plus flat key-value
// metadata entries. All writes for one sidecar happen in a single
// transaction so searches never see partially updated metadata. The
// database runs in WAL mode with a busy timeout so scanner workers and
// search queries can overlap safely.
package database
