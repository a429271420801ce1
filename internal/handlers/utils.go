package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mediafind/internal/logging"
	"mediafind/internal/safepath"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// resolveOrReject runs the requested path through the guard and writes
// the appropriate error response on failure. Traversal attempts get 400,
// missing files 404; returns ok=false when a response was written.
func (h *Handlers) resolveOrReject(w http.ResponseWriter, requested string) (sourcePath string, ok bool) {
	sourcePath, err := h.guard.Resolve(requested)
	if err != nil {
		switch {
		case errors.Is(err, safepath.ErrTraversal):
			writeJSONError(w, "invalid path", http.StatusBadRequest)
		case errors.Is(err, safepath.ErrNotFound):
			writeJSONError(w, "file not found", http.StatusNotFound)
		default:
			logging.Error("path resolution failed for %q: %v", requested, err)
			writeJSONError(w, "internal error", http.StatusInternalServerError)
		}
		return "", false
	}
	return sourcePath, true
}
