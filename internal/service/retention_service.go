package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/signalworks/flux-matrix/internal/util/workerpool"
	"go.uber.org/zap"
)

// RetentionService periodically garbage-collects old snapshots so the
// table does not grow without bound under automated snapshot callers.
// Sweeps run through the maintenance worker pool so a slow sweep never
// stacks goroutines behind the ticker.
type RetentionService struct {
	config   *RetentionConfig
	matrix   *MatrixService
	pool     *workerpool.Pool
	logger   *zap.Logger
	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// RetentionConfig holds snapshot retention configuration.
type RetentionConfig struct {
	KeepLatest int
	Interval   time.Duration
}

// NewRetentionService creates a retention service. Start must be called
// to begin sweeping.
func NewRetentionService(cfg *RetentionConfig, matrixSvc *MatrixService, pool *workerpool.Pool, logger *zap.Logger) *RetentionService {
	return &RetentionService{
		config:   cfg,
		matrix:   matrixSvc,
		pool:     pool,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the periodic sweep loop.
func (s *RetentionService) Start() {
	s.wg.Add(1)
	go s.loop()

	s.logger.Info("Snapshot retention started",
		zap.Int("keep_latest", s.config.KeepLatest),
		zap.Duration("interval", s.config.Interval))
}

func (s *RetentionService) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *RetentionService) sweep() {
	task := workerpool.Task{
		ID: fmt.Sprintf("snapshot-gc-%d", time.Now().UnixNano()),
		Fn: func(ctx context.Context) error {
			s.matrix.GCSnapshots(s.config.KeepLatest)
			return nil
		},
	}

	if !s.pool.TrySubmit(task) {
		s.logger.Warn("Failed to submit retention sweep, executing inline")
		s.matrix.GCSnapshots(s.config.KeepLatest)
	}
}

// Stop halts the sweep loop.
func (s *RetentionService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Info("Snapshot retention stopped")
	})
}
