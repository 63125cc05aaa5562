package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work.
type Task struct {
	ID      string
	Fn      func(context.Context) error
	Context context.Context
}

// Pool is a bounded pool of goroutines for background maintenance work
// (snapshot captures, retention sweeps). Bounding the pool keeps a
// burst of scheduled jobs from leaking goroutines.
type Pool struct {
	name       string
	maxWorkers int
	tasks      chan Task
	logger     *zap.Logger
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopChan   chan struct{}

	completed atomic.Uint64
	failed    atomic.Uint64
	rejected  atomic.Uint64
}

// Config holds pool configuration.
type Config struct {
	Name       string
	MaxWorkers int
	QueueSize  int
	Logger     *zap.Logger
}

// New creates and starts a pool.
func New(cfg *Config) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	p := &Pool{
		name:       cfg.Name,
		maxWorkers: cfg.MaxWorkers,
		tasks:      make(chan Task, cfg.QueueSize),
		logger:     cfg.Logger,
		stopChan:   make(chan struct{}),
	}

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info("Worker pool started",
		zap.String("name", p.name),
		zap.Int("max_workers", p.maxWorkers),
		zap.Int("queue_size", cfg.QueueSize))

	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case task := <-p.tasks:
			start := time.Now()
			err := p.run(task)
			if err != nil {
				p.failed.Add(1)
				p.logger.Error("Task failed",
					zap.String("pool", p.name),
					zap.Int("worker_id", id),
					zap.String("task_id", task.ID),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err))
			} else {
				p.completed.Add(1)
				p.logger.Debug("Task completed",
					zap.String("pool", p.name),
					zap.Int("worker_id", id),
					zap.String("task_id", task.ID),
					zap.Duration("duration", time.Since(start)))
			}
		}
	}
}

// run executes a task with panic recovery.
func (p *Pool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	if task.Context == nil {
		task.Context = context.Background()
	}
	return task.Fn(task.Context)
}

// TrySubmit attempts to submit a task without blocking. Returns false
// if the queue is full or the pool is stopped.
func (p *Pool) TrySubmit(task Task) bool {
	select {
	case <-p.stopChan:
		p.rejected.Add(1)
		return false
	default:
	}

	select {
	case p.tasks <- task:
		return true
	default:
		p.rejected.Add(1)
		return false
	}
}

// Stop drains the workers, waiting up to timeout.
func (p *Pool) Stop(timeout time.Duration) error {
	var err error
	p.stopOnce.Do(func() {
		close(p.stopChan)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("Worker pool stopped", zap.String("name", p.name))
		case <-time.After(timeout):
			err = fmt.Errorf("worker pool '%s' stop timeout after %v", p.name, timeout)
		}
	})
	return err
}

// Stats reports completed, failed, and rejected task counts.
func (p *Pool) Stats() (completed, failed, rejected uint64) {
	return p.completed.Load(), p.failed.Load(), p.rejected.Load()
}
