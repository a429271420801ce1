package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"mediafind/internal/cache"
	"mediafind/internal/database"
	"mediafind/internal/query"
	"mediafind/internal/safepath"
	"mediafind/internal/scanner"
)

// Variant names registered with the cache manager.
const (
	VariantThumbnail = "thumbnail"
	VariantPreview   = "preview"
)

type Handlers struct {
	db      *database.Database
	scanner *scanner.Scanner
	engine  *query.Engine
	cache   *cache.Manager
	videos  *cache.VideoStore
	guard   *safepath.Guard
}

func New(db *database.Database, sc *scanner.Scanner, mgr *cache.Manager, videos *cache.VideoStore, guard *safepath.Guard) *Handlers {
	return &Handlers{
		db:      db,
		scanner: sc,
		engine:  query.NewEngine(db),
		cache:   mgr,
		videos:  videos,
		guard:   guard,
	}
}

// RegisterRoutes attaches all application routes to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthzHandler).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivezHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", h.SearchHandler).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/version", h.VersionHandler).Methods(http.MethodGet)
	api.HandleFunc("/rescan", h.RescanHandler).Methods(http.MethodPost)
	api.HandleFunc("/thumbnail/{path:.*}", h.ThumbnailHandler).Methods(http.MethodGet)
	api.HandleFunc("/preview/{path:.*}", h.PreviewHandler).Methods(http.MethodGet)
	api.HandleFunc("/video/{path:.*}", h.VideoHandler).Methods(http.MethodGet)
}
