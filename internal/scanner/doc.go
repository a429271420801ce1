// Package scanner keeps the metadata index in sync with the sidecar
// files on disk.
//
// A scan walks the scan directory for .xmp files and fans them out to a
// worker pool. Each sidecar is fingerprinted with a fast content hash;
// unchanged files are skipped with only a last-seen bump, changed files
// have their metadata re-extracted and replaced in one transaction.
// After the walk, sidecars not seen by the run are reconciled out of
// the index. Scans run at startup, on a configurable interval, and on
// demand; overlapping requests coalesce into the scan already running.
package scanner
