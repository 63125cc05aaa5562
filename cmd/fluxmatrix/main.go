package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalworks/flux-matrix/internal/config"
	"github.com/signalworks/flux-matrix/internal/metrics"
	"github.com/signalworks/flux-matrix/internal/server"
	"github.com/signalworks/flux-matrix/internal/service"
	"github.com/signalworks/flux-matrix/internal/util/workerpool"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("node_id", cfg.Server.NodeID),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("position_space", cfg.Matrix.PositionSpace))

	// Initialize metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Server.NodeID)
	}

	// Initialize the engine
	matrixSvc := service.NewMatrixService(
		&service.MatrixConfig{
			Subject:       cfg.Matrix.Subject,
			PositionSpace: cfg.Matrix.PositionSpace,
		},
		m,
		logger,
	)

	// Register anchors declared in config
	for _, a := range cfg.Anchors {
		matrixSvc.RegisterAnchor(a.Position, a.OrbitalRadius, a.JudgmentThreshold)
	}

	// Maintenance worker pool and snapshot retention
	pool := workerpool.New(&workerpool.Config{
		Name:       "maintenance",
		MaxWorkers: cfg.Retention.Workers,
		QueueSize:  cfg.Retention.QueueSize,
		Logger:     logger,
	})
	defer pool.Stop(10 * time.Second)

	if cfg.Retention.Enabled {
		retentionSvc := service.NewRetentionService(
			&service.RetentionConfig{
				KeepLatest: cfg.Retention.KeepLatest,
				Interval:   cfg.Retention.Interval,
			},
			matrixSvc,
			pool,
			logger,
		)
		retentionSvc.Start()
		defer retentionSvc.Stop()
	}

	// Metrics server
	if cfg.Metrics.Enabled {
		metricsServer := server.NewMetricsServer(
			&server.MetricsServerConfig{Port: cfg.Metrics.Port, Path: cfg.Metrics.Path},
			logger,
		)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(ctx)
		}()
	}

	// API server
	apiServer := server.New(&cfg.Server, matrixSvc, logger)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Flux matrix engine starting",
		zap.String("node_id", cfg.Server.NodeID),
		zap.String("subject", cfg.Matrix.Subject))

	if err := apiServer.Start(); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}

// initLogger initializes the zap logger from config.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	return zapCfg.Build()
}
