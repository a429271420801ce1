package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mediafind/internal/database"
	"mediafind/internal/logging"
	"mediafind/internal/metrics"
	"mediafind/internal/workers"
)

// sidecarExt is the extension that marks a metadata sidecar, matched
// case-insensitively.
const sidecarExt = ".xmp"

// Scanner walks the scan directory for sidecar files and keeps the
// metadata index in sync with what is on disk.
type Scanner struct {
	db           *database.Database
	scanDir      string
	scanInterval time.Duration
	numWorkers   int
	stopChan     chan struct{}
	stopOnce     sync.Once

	scanMu              sync.Mutex
	isScanning          bool
	lastScanTime        time.Time
	initialScanComplete bool
	initialScanError    error
	startTime           time.Time

	// Progress tracking
	sidecarsSeen    atomic.Int64
	sidecarsUpdated atomic.Int64
	sidecarsSkipped atomic.Int64
	scanErrors      atomic.Int64
	scanProgress    atomic.Value
}

// ScanProgress tracks the current scan progress.
type ScanProgress struct {
	SidecarsSeen    int64     `json:"sidecarsSeen"`
	SidecarsUpdated int64     `json:"sidecarsUpdated"`
	SidecarsSkipped int64     `json:"sidecarsSkipped"`
	Errors          int64     `json:"errors"`
	IsScanning      bool      `json:"isScanning"`
	StartedAt       time.Time `json:"startedAt,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready            bool          `json:"ready"`
	Scanning         bool          `json:"scanning"`
	StartTime        time.Time     `json:"startTime"`
	Uptime           string        `json:"uptime"`
	LastScan         time.Time     `json:"lastScan,omitempty"`
	InitialScanError string        `json:"initialScanError,omitempty"`
	Progress         *ScanProgress `json:"scanProgress,omitempty"`
}

// New creates a Scanner over scanDir backed by db. scanInterval controls
// the periodic full re-scan; numWorkers <= 0 picks a default sized for
// mixed CPU and I/O work.
func New(db *database.Database, scanDir string, scanInterval time.Duration, numWorkers int) *Scanner {
	if numWorkers <= 0 {
		numWorkers = workers.ForMixed(12)
	}
	s := &Scanner{
		db:           db,
		scanDir:      scanDir,
		scanInterval: scanInterval,
		numWorkers:   numWorkers,
		stopChan:     make(chan struct{}),
		startTime:    time.Now(),
	}
	s.scanProgress.Store(ScanProgress{})
	return s
}

// Start kicks off the initial scan in the background and begins the
// periodic re-scan loop.
func (s *Scanner) Start() {
	go func() {
		logging.Info("Starting initial sidecar scan in background...")
		if err := s.Scan(); err != nil {
			logging.Error("Initial scan error: %v", err)
			s.scanMu.Lock()
			s.initialScanError = err
			s.scanMu.Unlock()
		}
	}()

	go s.periodicScan()
}

// Stop stops the periodic scan loop. In-flight scans finish their
// current file and exit.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *Scanner) periodicScan() {
	if s.scanInterval <= 0 {
		logging.Info("Periodic re-scan disabled")
		return
	}

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic re-scan triggered")
			if err := s.Scan(); err != nil {
				logging.Error("Periodic re-scan failed: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// TriggerScan starts a scan in the background. A no-op when one is
// already running.
func (s *Scanner) TriggerScan() {
	go func() {
		if err := s.Scan(); err != nil {
			logging.Error("Triggered re-scan failed: %v", err)
		}
	}()
}

// Scan walks the scan directory once: new and changed sidecars are
// (re)indexed, unchanged ones are skipped on their fingerprint, and
// sidecars that disappeared from disk are removed from the index.
// Concurrent calls are coalesced; the second caller returns nil
// immediately.
func (s *Scanner) Scan() error {
	if !s.tryStartScan() {
		logging.Info("Scan already in progress, skipping...")
		return nil
	}
	defer s.finishScan()

	metrics.ScannerIsRunning.Set(1)
	defer metrics.ScannerIsRunning.Set(0)
	metrics.ScannerRunsTotal.Inc()

	startTime := time.Now()
	logging.Info("Starting sidecar scan of %s with %d workers", s.scanDir, s.numWorkers)
	s.resetCounters(startTime)

	ctx := context.Background()

	// Snapshot of known fingerprints lets workers decide skip/update
	// without a read query per file.
	known, err := s.db.AllFingerprints(ctx)
	if err != nil {
		return fmt.Errorf("failed to load known fingerprints: %w", err)
	}

	// Timestamps at or after cutoff mark sidecars seen by this run;
	// everything older gets reconciled away afterwards.
	cutoff := time.Now()

	if err := s.processSidecars(ctx, known, startTime); err != nil {
		return err
	}

	select {
	case <-s.stopChan:
		logging.Info("Scan interrupted by shutdown, skipping reconciliation")
		return nil
	default:
	}

	deleted, err := s.db.DeleteMissing(ctx, cutoff)
	if err != nil {
		logging.Error("Reconciliation failed: %v", err)
		metrics.ScannerErrors.WithLabelValues("store").Inc()
	} else if deleted > 0 {
		logging.Info("Removed %d missing sidecars from index", deleted)
	}

	s.finalizeScan(startTime)
	return nil
}

// processSidecars walks the tree and fans sidecar paths out to a worker
// pool. Each worker fingerprints, parses and stores one sidecar at a
// time in its own short transaction.
func (s *Scanner) processSidecars(ctx context.Context, known map[string]string, startTime time.Time) error {
	jobs := make(chan string, s.numWorkers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for relPath := range jobs {
				s.processSidecar(ctx, relPath, known)
				s.updateProgress(startTime)
			}
		}()
	}

	walkErr := filepath.WalkDir(s.scanDir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-s.stopChan:
			return fs.SkipAll
		default:
		}

		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() && path != s.scanDir {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), sidecarExt) {
			return nil
		}

		relPath, err := filepath.Rel(s.scanDir, path)
		if err != nil {
			logging.Warn("Failed to relativize %s: %v", path, err)
			return nil
		}

		jobs <- filepath.ToSlash(relPath)
		return nil
	})

	close(jobs)
	wg.Wait()

	if walkErr != nil && walkErr != fs.SkipAll {
		return fmt.Errorf("walk error: %w", walkErr)
	}
	return nil
}

func (s *Scanner) finalizeScan(startTime time.Time) {
	duration := time.Since(startTime)

	s.scanMu.Lock()
	s.lastScanTime = time.Now()
	s.scanMu.Unlock()

	seen := s.sidecarsSeen.Load()
	updated := s.sidecarsUpdated.Load()
	skipped := s.sidecarsSkipped.Load()
	errs := s.scanErrors.Load()

	s.scanProgress.Store(ScanProgress{
		SidecarsSeen:    seen,
		SidecarsUpdated: updated,
		SidecarsSkipped: skipped,
		Errors:          errs,
	})

	metrics.ScannerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScannerLastRunDuration.Set(duration.Seconds())

	logging.Info("Scan complete: %d sidecars (%d updated, %d unchanged, %d errors) in %v",
		seen, updated, skipped, errs, duration)
}

func (s *Scanner) tryStartScan() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if s.isScanning {
		return false
	}
	s.isScanning = true
	return true
}

func (s *Scanner) finishScan() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	s.isScanning = false
	s.initialScanComplete = true
}

func (s *Scanner) resetCounters(startTime time.Time) {
	s.sidecarsSeen.Store(0)
	s.sidecarsUpdated.Store(0)
	s.sidecarsSkipped.Store(0)
	s.scanErrors.Store(0)
	s.scanProgress.Store(ScanProgress{
		IsScanning: true,
		StartedAt:  startTime,
	})
}

func (s *Scanner) updateProgress(startTime time.Time) {
	s.scanProgress.Store(ScanProgress{
		SidecarsSeen:    s.sidecarsSeen.Load(),
		SidecarsUpdated: s.sidecarsUpdated.Load(),
		SidecarsSkipped: s.sidecarsSkipped.Load(),
		Errors:          s.scanErrors.Load(),
		IsScanning:      true,
		StartedAt:       startTime,
	})
}

// IsReady reports whether the initial scan has completed.
func (s *Scanner) IsReady() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.initialScanComplete
}

// IsScanning reports whether a scan is currently in progress.
func (s *Scanner) IsScanning() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.isScanning
}

// LastScanTime returns the completion time of the last scan.
func (s *Scanner) LastScanTime() time.Time {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.lastScanTime
}

// GetProgress returns the current scan progress.
func (s *Scanner) GetProgress() ScanProgress {
	if progress, ok := s.scanProgress.Load().(ScanProgress); ok {
		return progress
	}
	return ScanProgress{}
}

// GetHealthStatus returns detailed health information.
func (s *Scanner) GetHealthStatus() HealthStatus {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	status := HealthStatus{
		Ready:     s.initialScanComplete,
		Scanning:  s.isScanning,
		StartTime: s.startTime,
		Uptime:    time.Since(s.startTime).String(),
		LastScan:  s.lastScanTime,
	}

	if s.isScanning {
		progress := s.GetProgressUnlocked()
		status.Progress = &progress
	}

	if s.initialScanError != nil {
		status.InitialScanError = s.initialScanError.Error()
	}

	return status
}

// GetProgressUnlocked reads progress without taking scanMu; safe because
// progress lives in an atomic.Value.
func (s *Scanner) GetProgressUnlocked() ScanProgress {
	if progress, ok := s.scanProgress.Load().(ScanProgress); ok {
		return progress
	}
	return ScanProgress{}
}
