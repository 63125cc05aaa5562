package matrix_test

import (
	"sync"
	"testing"

	"github.com/signalworks/flux-matrix/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionIndex_InsertAndGet(t *testing.T) {
	idx := matrix.NewPositionIndex(10)

	assert.Nil(t, idx.Get(3))

	rec := versioned(1)
	idx.InsertAt(3, rec)

	got := idx.Get(3)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got.Version)
	assert.Equal(t, 1, idx.Len())
}

func TestPositionIndex_UpsertReplacesLatest(t *testing.T) {
	idx := matrix.NewPositionIndex(10)

	idx.InsertAt(5, versioned(1))
	idx.InsertAt(5, versioned(2))

	got := idx.Get(5)
	require.NotNil(t, got)
	assert.Equal(t, uint64(2), got.Version)
	assert.Equal(t, 1, idx.Len(), "re-upsert must not grow the count")
}

func TestPositionIndex_OutOfRange(t *testing.T) {
	idx := matrix.NewPositionIndex(10)

	idx.InsertAt(-1, versioned(1))
	idx.InsertAt(10, versioned(2))

	assert.Nil(t, idx.Get(-1))
	assert.Nil(t, idx.Get(10))
	assert.Equal(t, 0, idx.Len())
}

func TestPositionIndex_DefaultSize(t *testing.T) {
	idx := matrix.NewPositionIndex(0)
	assert.Equal(t, matrix.DefaultPositionSpace, idx.Size())
}

func TestPositionIndex_CopyContents(t *testing.T) {
	idx := matrix.NewPositionIndex(10)
	idx.InsertAt(1, versioned(1))
	idx.InsertAt(7, versioned(2))

	contents := idx.CopyContents()
	require.Len(t, contents, 2)
	assert.Equal(t, uint64(1), contents[1].Version)
	assert.Equal(t, uint64(2), contents[7].Version)

	// The copy is detached from later inserts.
	idx.InsertAt(1, versioned(3))
	assert.Equal(t, uint64(1), contents[1].Version)
}

func TestPositionIndex_ConcurrentDistinctPositions(t *testing.T) {
	idx := matrix.NewPositionIndex(64)

	var wg sync.WaitGroup
	for pos := 0; pos < 64; pos++ {
		wg.Add(1)
		go func(pos int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				idx.InsertAt(pos, versioned(uint64(pos*100+i+1)))
			}
		}(pos)
	}
	wg.Wait()

	assert.Equal(t, 64, idx.Len())
	for pos := 0; pos < 64; pos++ {
		got := idx.Get(pos)
		require.NotNil(t, got)
		// Single writer per position: the last write must be visible.
		assert.Equal(t, uint64(pos*100+100), got.Version)
	}
}
