package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediafind/internal/logging"
	"mediafind/internal/metrics"
)

// ErrNotFound is returned when a derivative does not exist and the
// variant cannot generate one.
var ErrNotFound = errors.New("derivative not found")

// GenerateFunc produces a derivative of sourcePath and writes it to w.
type GenerateFunc func(ctx context.Context, sourcePath string, w io.Writer) error

// Variant describes one class of derivative (thumbnail, preview, ...).
// A nil Generate makes the variant lookup-only: requests for missing
// derivatives return ErrNotFound instead of generating.
type Variant struct {
	Name        string
	Root        string
	Ext         string
	ContentType string
	Generate    GenerateFunc
}

// Manager is a get-or-generate cache of media derivatives keyed by the
// requested media path. Derivatives are written to a temp file in the
// variant's cache directory and renamed into place, so readers only
// ever see complete files.
type Manager struct {
	variants map[string]Variant
	locks    sync.Map // cache file path -> *sync.Mutex
}

// NewManager creates a Manager for the given variants and ensures each
// variant's cache directory exists.
func NewManager(variants ...Variant) (*Manager, error) {
	m := &Manager{variants: make(map[string]Variant, len(variants))}
	for _, v := range variants {
		if err := os.MkdirAll(v.Root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir for %s: %w", v.Name, err)
		}
		m.variants[v.Name] = v
	}
	return m, nil
}

// Variant returns the named variant.
func (m *Manager) Variant(name string) (Variant, bool) {
	v, ok := m.variants[name]
	return v, ok
}

// Key returns the cache key for a media path: the hex SHA-256 of the
// path string. Keying on the request path (not file content) keeps
// lookups free of source I/O.
func Key(mediaPath string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(mediaPath)))
}

// GetOrCreate returns the path of the cached derivative for mediaPath
// under the named variant, generating it from sourcePath on a miss.
// With bust set, any cached derivative is ignored and regenerated.
func (m *Manager) GetOrCreate(ctx context.Context, name, mediaPath, sourcePath string, bust bool) (string, error) {
	v, ok := m.variants[name]
	if !ok {
		return "", fmt.Errorf("unknown cache variant: %s", name)
	}

	cachedPath := filepath.Join(v.Root, Key(mediaPath)+v.Ext)

	if bust {
		metrics.CacheBusts.WithLabelValues(v.Name).Inc()
	} else {
		if _, err := os.Stat(cachedPath); err == nil {
			logging.Debug("Cache hit (%s): %s", v.Name, mediaPath)
			metrics.CacheHits.WithLabelValues(v.Name).Inc()
			return cachedPath, nil
		}
		metrics.CacheMisses.WithLabelValues(v.Name).Inc()
	}

	if v.Generate == nil {
		return "", ErrNotFound
	}

	// One generation per key at a time, so a duplicate request waits
	// instead of redoing the work. Unrelated keys generate in parallel;
	// correctness rests on the atomic rename alone, not this lock.
	lock, _ := m.locks.LoadOrStore(cachedPath, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// A concurrent request may have generated it while we waited.
	if !bust {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	logging.Debug("Cache miss (%s): generating for %s", v.Name, mediaPath)
	start := time.Now()

	if err := m.generate(ctx, v, sourcePath, cachedPath); err != nil {
		metrics.CacheGenerationErrors.WithLabelValues(v.Name).Inc()
		return "", err
	}

	metrics.CacheGenerationDuration.WithLabelValues(v.Name).Observe(time.Since(start).Seconds())
	return cachedPath, nil
}

func (m *Manager) generate(ctx context.Context, v Variant, sourcePath, cachedPath string) error {
	tmp, err := os.CreateTemp(v.Root, ".generating-*"+v.Ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := v.Generate(ctx, sourcePath, tmp); err != nil {
		if closeErr := tmp.Close(); closeErr != nil {
			logging.Warn("Failed to close temp file %s: %v", tmpPath, closeErr)
		}
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			logging.Warn("Failed to remove temp file %s: %v", tmpPath, rmErr)
		}
		return fmt.Errorf("%s generation failed: %w", v.Name, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		logging.Warn("Failed to chmod derivative %s: %v", tmpPath, err)
	}

	if err := os.Rename(tmpPath, cachedPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to publish derivative: %w", err)
	}

	return nil
}
