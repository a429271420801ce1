// Package cache implements the derivative cache: thumbnails and
// previews generated on demand and keyed by the requested media path,
// plus a lookup-only store of pre-transcoded video renditions.
//
// Writes are atomic. A derivative is generated into a temp file in its
// cache directory and renamed into place, so a concurrent reader sees
// either the complete file or a miss, never a partial write.
package cache
