// Package server wires the engine's HTTP surfaces: the JSON API and
// the Prometheus metrics endpoint.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/signalworks/flux-matrix/internal/config"
	"github.com/signalworks/flux-matrix/internal/handler"
	"github.com/signalworks/flux-matrix/internal/health"
	"github.com/signalworks/flux-matrix/internal/middleware"
	"github.com/signalworks/flux-matrix/internal/service"
	"go.uber.org/zap"
)

// Server is the engine's JSON API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	logger     *zap.Logger
}

// New creates an API server over the given engine.
func New(cfg *config.ServerConfig, matrixSvc *service.MatrixService, logger *zap.Logger) *Server {
	router := mux.NewRouter()
	h := handler.NewMatrixHandler(matrixSvc, logger)
	checker := health.NewChecker(cfg.NodeID, matrixSvc, logger)

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		router: router,
		logger: logger,
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, logger)
	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		rateLimiter.Limit,
	)
	router.Use(func(next http.Handler) http.Handler {
		return chain(next)
	})

	router.HandleFunc("/health", checker.LivenessHandler).Methods(http.MethodGet)
	router.HandleFunc("/ready", checker.ReadinessHandler).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/records", h.Insert).Methods(http.MethodPost)
	v1.HandleFunc("/records/{position}", h.Get).Methods(http.MethodGet)
	v1.HandleFunc("/query", h.Query).Methods(http.MethodGet)
	v1.HandleFunc("/anchors", h.RegisterAnchor).Methods(http.MethodPost)
	v1.HandleFunc("/judge", h.Judge).Methods(http.MethodPost)
	v1.HandleFunc("/snapshots", h.CreateSnapshot).Methods(http.MethodPost)
	v1.HandleFunc("/snapshots", h.ListSnapshots).Methods(http.MethodGet)
	v1.HandleFunc("/snapshots/gc", h.GCSnapshots).Methods(http.MethodPost)
	v1.HandleFunc("/snapshots/{version}/records/{position}", h.GetFromSnapshot).Methods(http.MethodGet)
	v1.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	return s
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("API server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
