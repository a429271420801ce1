package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediafind/internal/cache"
	"mediafind/internal/database"
	"mediafind/internal/handlers"
	"mediafind/internal/logging"
	"mediafind/internal/media"
	"mediafind/internal/middleware"
	"mediafind/internal/safepath"
	"mediafind/internal/scanner"
	"mediafind/internal/startup"
	"mediafind/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Refresh database metrics periodically
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		for range ticker.C {
			db.UpdateDBMetrics()
		}
	}()

	// Reclaim space from deleted index rows once a day
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			if err := db.Vacuum(); err != nil {
				logging.Warn("Database vacuum failed: %v", err)
			}
		}
	}()

	// All media paths served over HTTP resolve through the guard
	guard, err := safepath.NewGuard(config.ScanDir)
	if err != nil {
		logging.Fatal("Failed to initialize path guard: %v", err)
	}

	// Initialize media pipeline
	startup.LogMediaInit()
	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using fallback image decoding: %v", err)
	}
	defer media.ShutdownVips()

	// Initialize derivative caches
	derivatives, err := cache.NewManager(
		cache.Variant{
			Name:        handlers.VariantThumbnail,
			Root:        config.ThumbnailDir,
			Ext:         ".jpg",
			ContentType: "image/jpeg",
			Generate:    media.Thumbnail,
		},
		cache.Variant{
			Name:        handlers.VariantPreview,
			Root:        config.PreviewDir,
			Ext:         ".jpg",
			ContentType: "image/jpeg",
			Generate:    media.Preview,
		},
	)
	if err != nil {
		logging.Fatal("Failed to initialize derivative cache: %v", err)
	}

	videos, err := cache.NewVideoStore(config.VideoDir)
	if err != nil {
		logging.Fatal("Failed to initialize video store: %v", err)
	}

	// Initialize scanner
	numWorkers := config.ScanWorkers
	if numWorkers <= 0 {
		numWorkers = workers.ForMixed(12)
	}
	startup.LogScannerInit(config.ScanInterval, numWorkers)
	sc := scanner.New(db, config.ScanDir, config.ScanInterval, numWorkers)

	// Start scanner in background (non-blocking)
	sc.Start()
	startup.LogScannerStarted()

	// Initialize handlers and routes
	h := handlers.New(db, sc, derivatives, videos, guard)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	// Metrics run as mux middleware so the route template is available
	// as the path label
	if config.MetricsEnabled {
		router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}

	// Log routes dynamically
	startup.LogHTTPRoutes(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics are served on a separate listener so they stay off the
	// application port
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", promhttp.Handler()).Methods("GET")
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsRouter,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, sc)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, metricsSrv *http.Server, sc *scanner.Scanner) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping scanner")
	sc.Stop()
	startup.LogShutdownStepComplete("Scanner stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
