package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"mediafind/internal/logging"
	"mediafind/internal/metrics"
	"mediafind/internal/xmp"
)

// processSidecar brings one sidecar up to date in the index. known maps
// indexed paths to their stored fingerprints; unchanged sidecars only
// get their last-seen timestamp bumped. Errors are counted and logged
// but never abort the scan, and a sidecar that fails to read or parse
// keeps whatever the index already holds for it.
func (s *Scanner) processSidecar(ctx context.Context, relPath string, known map[string]string) {
	s.sidecarsSeen.Add(1)
	metrics.ScannerSidecarsSeen.Inc()

	absPath := filepath.Join(s.scanDir, filepath.FromSlash(relPath))
	data, err := os.ReadFile(absPath)
	if err != nil {
		logging.Warn("Failed to read sidecar %s: %v", relPath, err)
		s.recordError("io")
		s.keepAlive(ctx, relPath, known)
		return
	}

	fingerprint := fingerprintOf(data)

	if known[relPath] == fingerprint {
		if err := s.db.MarkSeen(ctx, relPath); err != nil {
			logging.Warn("Failed to mark %s as seen: %v", relPath, err)
			s.recordError("store")
			return
		}
		s.sidecarsSkipped.Add(1)
		metrics.ScannerSidecarsSkipped.Inc()
		return
	}

	entries, err := xmp.Extract(data)
	if err != nil {
		logging.Warn("Failed to parse sidecar %s: %v", relPath, err)
		s.recordError("parse")
		s.keepAlive(ctx, relPath, known)
		return
	}

	if err := s.db.UpsertSidecar(relPath, fingerprint, entries); err != nil {
		logging.Error("Failed to index sidecar %s: %v", relPath, err)
		s.recordError("store")
		return
	}

	s.sidecarsUpdated.Add(1)
	metrics.ScannerSidecarsUpdated.Inc()
	logging.Debug("Indexed sidecar %s (%d entries)", relPath, len(entries))
}

// keepAlive bumps the last-seen timestamp of an already-indexed sidecar
// that failed this run, so reconciliation doesn't drop its entries while
// the file still exists on disk.
func (s *Scanner) keepAlive(ctx context.Context, relPath string, known map[string]string) {
	if _, indexed := known[relPath]; !indexed {
		return
	}
	if err := s.db.MarkSeen(ctx, relPath); err != nil {
		logging.Warn("Failed to mark %s as seen: %v", relPath, err)
	}
}

func (s *Scanner) recordError(kind string) {
	s.scanErrors.Add(1)
	metrics.ScannerErrors.WithLabelValues(kind).Inc()
}

// fingerprintOf returns the change-detection fingerprint for sidecar
// content: a fast non-cryptographic hash rendered as fixed-width hex.
func fingerprintOf(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
