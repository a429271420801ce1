package handlers

import (
	"net/http"
	"time"

	"mediafind/internal/startup"
)

// LivezHandler handles GET /livez. Always 200 while the process can
// serve requests.
func (h *Handlers) LivezHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "ok")
}

// HealthzHandler handles GET /healthz. Returns 503 until the initial
// scan has completed so load balancers don't route traffic to an empty
// index.
func (h *Handlers) HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	status := h.scanner.GetHealthStatus()

	w.Header().Set("Content-Type", "application/json")
	if !status.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, status)
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	SidecarCount int64     `json:"sidecarCount"`
	EntryCount   int64     `json:"entryCount"`
	KeyCount     int64     `json:"keyCount"`
	LastUpdated  time.Time `json:"lastUpdated"`
	Scanning     bool      `json:"scanning"`
	LastScan     time.Time `json:"lastScan"`
}

// StatsHandler handles GET /api/stats.
func (h *Handlers) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.Stats(r.Context())
	if err != nil {
		writeJSONError(w, "failed to read index stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, StatsResponse{
		SidecarCount: stats.SidecarCount,
		EntryCount:   stats.EntryCount,
		KeyCount:     stats.KeyCount,
		LastUpdated:  stats.LastUpdated,
		Scanning:     h.scanner.IsScanning(),
		LastScan:     h.scanner.LastScanTime(),
	})
}

// RescanHandler handles POST /api/rescan: kicks off a background scan
// and returns immediately. Coalesces with any scan already running.
func (h *Handlers) RescanHandler(w http.ResponseWriter, _ *http.Request) {
	h.scanner.TriggerScan()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "scan triggered"})
}

// VersionHandler handles GET /api/version.
func (h *Handlers) VersionHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}
