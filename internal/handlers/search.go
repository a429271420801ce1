package handlers

import (
	"encoding/base64"
	"net/http"
	"os"

	"mediafind/internal/logging"
)

// SearchResult is one entry in a search response. Thumbnail is a
// base64-encoded JPEG, or null when one could not be produced.
type SearchResult struct {
	SidecarPath string  `json:"sidecarPath"`
	MediaPath   string  `json:"mediaPath"`
	Value       string  `json:"value"`
	Thumbnail   *string `json:"thumbnail"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// SearchHandler handles GET /api/search?q=<terms>. Terms are joined
// with " AND "; every term must match for a sidecar to be returned.
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	matches, err := h.engine.Search(r.Context(), q)
	if err != nil {
		logging.Error("search failed for %q: %v", q, err)
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			SidecarPath: m.SidecarPath,
			MediaPath:   m.MediaPath,
			Value:       m.Value,
			Thumbnail:   h.inlineThumbnail(r, m.MediaPath),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SearchResponse{
		Query:   q,
		Count:   len(results),
		Results: results,
	})
}

// inlineThumbnail returns the base64 thumbnail for a media path, or nil
// when the source is missing or generation fails. Search results are
// best-effort here; a broken source must not fail the whole search.
func (h *Handlers) inlineThumbnail(r *http.Request, mediaPath string) *string {
	sourcePath, err := h.guard.Resolve(mediaPath)
	if err != nil {
		logging.Debug("no thumbnail for %s: %v", mediaPath, err)
		return nil
	}

	cached, err := h.cache.GetOrCreate(r.Context(), VariantThumbnail, mediaPath, sourcePath, false)
	if err != nil {
		logging.Debug("thumbnail generation failed for %s: %v", mediaPath, err)
		return nil
	}

	data, err := os.ReadFile(cached)
	if err != nil {
		logging.Warn("failed to read cached thumbnail %s: %v", cached, err)
		return nil
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return &encoded
}
