package workerpool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/signalworks/flux-matrix/internal/util/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutesTasks(t *testing.T) {
	pool := workerpool.New(&workerpool.Config{Name: "test", MaxWorkers: 2, QueueSize: 8})
	defer pool.Stop(time.Second)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		ok := pool.TrySubmit(workerpool.Task{
			ID: "task",
			Fn: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
		require.True(t, ok)
	}

	assert.Eventually(t, func() bool {
		completed, _, _ := pool.Stats()
		return completed == 5
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_RecoversFromPanic(t *testing.T) {
	pool := workerpool.New(&workerpool.Config{Name: "test", MaxWorkers: 1, QueueSize: 2})
	defer pool.Stop(time.Second)

	require.True(t, pool.TrySubmit(workerpool.Task{
		ID: "panics",
		Fn: func(ctx context.Context) error { panic("boom") },
	}))

	assert.Eventually(t, func() bool {
		_, failed, _ := pool.Stats()
		return failed == 1
	}, time.Second, 10*time.Millisecond)

	// The worker survives and keeps processing.
	var ran atomic.Bool
	require.True(t, pool.TrySubmit(workerpool.Task{
		ID: "after",
		Fn: func(ctx context.Context) error {
			ran.Store(true)
			return nil
		},
	}))
	assert.Eventually(t, ran.Load, time.Second, 10*time.Millisecond)
}

func TestPool_RejectsWhenStopped(t *testing.T) {
	pool := workerpool.New(&workerpool.Config{Name: "test", MaxWorkers: 1, QueueSize: 1})
	require.NoError(t, pool.Stop(time.Second))

	ok := pool.TrySubmit(workerpool.Task{
		ID: "late",
		Fn: func(ctx context.Context) error { return nil },
	})
	assert.False(t, ok)

	_, _, rejected := pool.Stats()
	assert.Equal(t, uint64(1), rejected)
}
