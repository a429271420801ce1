package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"mediafind/internal/cache"
	"mediafind/internal/logging"
)

// ThumbnailResponse is the body of GET /api/thumbnail/{path}.
type ThumbnailResponse struct {
	FilePath  string  `json:"filePath"`
	Thumbnail *string `json:"thumbnail"`
}

// ThumbnailHandler handles GET /api/thumbnail/{path}. The thumbnail is
// returned base64-encoded inside a JSON envelope; generation failures
// yield a null thumbnail rather than an error so galleries can render
// placeholders.
func (h *Handlers) ThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	mediaPath := mux.Vars(r)["path"]

	sourcePath, ok := h.resolveOrReject(w, mediaPath)
	if !ok {
		return
	}

	response := ThumbnailResponse{FilePath: mediaPath}

	cached, err := h.cache.GetOrCreate(r.Context(), VariantThumbnail, mediaPath, sourcePath, false)
	if err != nil {
		logging.Warn("thumbnail generation failed for %s: %v", mediaPath, err)
	} else if data, err := os.ReadFile(cached); err == nil {
		encoded := base64.StdEncoding.EncodeToString(data)
		response.Thumbnail = &encoded
	} else {
		logging.Warn("failed to read cached thumbnail %s: %v", cached, err)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// PreviewHandler handles GET /api/preview/{path}. It serves the preview
// JPEG directly. A "t" query parameter busts the cache: the derivative
// is regenerated and the response marked uncacheable, which lets a
// client force a refresh after editing a photo.
func (h *Handlers) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	mediaPath := mux.Vars(r)["path"]
	bust := r.URL.Query().Has("t")

	sourcePath, ok := h.resolveOrReject(w, mediaPath)
	if !ok {
		return
	}

	cached, err := h.cache.GetOrCreate(r.Context(), VariantPreview, mediaPath, sourcePath, bust)
	if err != nil {
		logging.Error("preview generation failed for %s: %v", mediaPath, err)
		writeJSONError(w, "preview generation failed", http.StatusInternalServerError)
		return
	}

	if bust {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	if v, ok := h.cache.Variant(VariantPreview); ok && v.ContentType != "" {
		w.Header().Set("Content-Type", v.ContentType)
	}
	http.ServeFile(w, r, cached)
}

// VideoHandler handles GET /api/video/{path}. It only ever serves a
// pre-transcoded 480p rendition; nothing is transcoded on demand, so a
// missing rendition is a plain 404.
func (h *Handlers) VideoHandler(w http.ResponseWriter, r *http.Request) {
	mediaPath := mux.Vars(r)["path"]

	if _, ok := h.resolveOrReject(w, mediaPath); !ok {
		return
	}

	rendition, err := h.videos.Resolve480p(mediaPath)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			writeJSONError(w, "no rendition available", http.StatusNotFound)
			return
		}
		logging.Error("rendition lookup failed for %s: %v", mediaPath, err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, rendition)
}
