package matrix_test

import (
	"testing"

	"github.com/signalworks/flux-matrix/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotManager_CaptureAndGet(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	sm := matrix.NewSnapshotManager()

	idx.InsertAt(5, versioned(1))
	version := sm.Capture(idx, 1)

	assert.Equal(t, uint64(1), version)
	got := sm.Get(1, 5)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got.Version)
}

func TestSnapshotManager_Immutability(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	sm := matrix.NewSnapshotManager()

	idx.InsertAt(5, versioned(1))
	sm.Capture(idx, 1)

	// Later inserts must not leak into the captured view.
	idx.InsertAt(5, versioned(2))
	idx.InsertAt(7, versioned(3))

	got := sm.Get(1, 5)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got.Version)
	assert.Nil(t, sm.Get(1, 7))
}

func TestSnapshotManager_ExactVersionKeyed(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	sm := matrix.NewSnapshotManager()

	idx.InsertAt(1, versioned(1))
	sm.Capture(idx, 2)
	sm.Capture(idx, 8)

	// Versions between stored keys do not resolve.
	assert.Nil(t, sm.Get(5, 1))
	assert.NotNil(t, sm.Get(2, 1))
	assert.NotNil(t, sm.Get(8, 1))
}

func TestSnapshotManager_MissingPosition(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	sm := matrix.NewSnapshotManager()

	sm.Capture(idx, 1)
	assert.Nil(t, sm.Get(1, 3))
}

func TestSnapshotManager_GCRetention(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	sm := matrix.NewSnapshotManager()

	idx.InsertAt(0, versioned(1))
	for v := uint64(10); v <= 50; v += 10 {
		sm.Capture(idx, v)
	}
	require.Equal(t, 5, sm.Count())

	dropped := sm.GC(2)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 2, sm.Count())

	// The retained set is exactly the two highest versions.
	assert.Equal(t, []uint64{40, 50}, sm.Versions())
	assert.Nil(t, sm.Get(10, 0))
	assert.NotNil(t, sm.Get(50, 0))
}

func TestSnapshotManager_GCClamping(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	sm := matrix.NewSnapshotManager()

	sm.Capture(idx, 1)
	sm.Capture(idx, 2)

	// keepLatest larger than the table is clamped, not an error.
	assert.Equal(t, 0, sm.GC(10))
	assert.Equal(t, 2, sm.Count())

	// Negative keepLatest drops everything.
	assert.Equal(t, 2, sm.GC(-1))
	assert.Equal(t, 0, sm.Count())
}

func TestSnapshotManager_GCEmpty(t *testing.T) {
	sm := matrix.NewSnapshotManager()
	assert.Equal(t, 0, sm.GC(3))
	assert.Equal(t, 0, sm.Count())
}
