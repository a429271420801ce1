// Package startup handles application initialization, configuration
// loading, and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - SCAN_DIR: Directory scanned for metadata sidecars (default: /media)
//   - DATABASE_DIR: Directory holding the index database (default: /database)
//   - THUMBNAIL_CACHE_DIR: Thumbnail derivative cache (default: /cache/thumbnails)
//   - PREVIEW_CACHE_DIR: Preview derivative cache (default: /cache/previews)
//   - VIDEO_CACHE_DIR: Pre-transcoded video rendition store (default: /cache/videos)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SCAN_INTERVAL: Periodic re-scan interval as Go duration (default: 30m)
//   - SCAN_WORKERS: Scanner worker count, 0 sizes from CPU count (default: 0)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//
// # Directory Setup
//
// The scan directory must already exist (it should be mounted). The
// database and cache directories are created if missing and must be
// writable; a non-writable required directory fails startup.
//
// Build-time variables (Version, Commit, BuildTime) are injected via
// ldflags and exposed via [GetBuildInfo].
package startup
