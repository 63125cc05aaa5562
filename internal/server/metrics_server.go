package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsServer serves Prometheus metrics via HTTP.
type MetricsServer struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	Port int
	Path string
}

// NewMetricsServer creates a new metrics server.
func NewMetricsServer(cfg *MetricsServerConfig, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()

	ms := &MetricsServer{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/debug/runtime", ms.runtimeHandler)

	return ms
}

// runtimeHandler reports goroutine and memory figures for quick checks
// without a Prometheus scrape.
func (ms *MetricsServer) runtimeHandler(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"goroutines":  runtime.NumGoroutine(),
		"heap_bytes":  mem.HeapAlloc,
		"total_bytes": mem.TotalAlloc,
		"num_gc":      mem.NumGC,
	})
}

// Start begins serving metrics. Blocks until the server stops.
func (ms *MetricsServer) Start() error {
	ms.logger.Info("Metrics server starting", zap.String("addr", ms.httpServer.Addr))
	if err := ms.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the metrics server.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.httpServer.Shutdown(ctx)
}
