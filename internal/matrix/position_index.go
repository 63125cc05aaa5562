package matrix

import (
	"sync/atomic"

	"github.com/signalworks/flux-matrix/internal/model"
)

// DefaultPositionSpace is the number of slots when no size is configured.
const DefaultPositionSpace = 10

// PositionIndex is the primary read path: one slot per position, each
// holding the most recently applied record for that position. The key
// space is bounded and fixed at construction, so slots are a flat array
// of atomic pointers and every operation is lock-free.
//
// Concurrent writers to the same position race on the slot store;
// whichever store executes last wins, regardless of which record
// carries the higher version. That is deliberate: the slot is a plain
// store, not a version-compared CAS.
type PositionIndex struct {
	slots []atomic.Pointer[model.VersionedRecord]
	count atomic.Int64
}

// NewPositionIndex creates an index with the given number of positions.
// Sizes below one fall back to DefaultPositionSpace.
func NewPositionIndex(size int) *PositionIndex {
	if size < 1 {
		size = DefaultPositionSpace
	}
	return &PositionIndex{
		slots: make([]atomic.Pointer[model.VersionedRecord], size),
	}
}

// Size returns the bounded key space.
func (idx *PositionIndex) Size() int {
	return len(idx.slots)
}

// InsertAt unconditionally upserts the record at position. Positions
// outside the key space are ignored; callers validate at the boundary.
func (idx *PositionIndex) InsertAt(position int, rec *model.VersionedRecord) {
	if position < 0 || position >= len(idx.slots) {
		return
	}
	if idx.slots[position].Swap(rec) == nil {
		idx.count.Add(1)
	}
}

// Get returns the current record at position, or nil if the position
// was never written or is out of range.
func (idx *PositionIndex) Get(position int) *model.VersionedRecord {
	if position < 0 || position >= len(idx.slots) {
		return nil
	}
	return idx.slots[position].Load()
}

// Len returns the number of occupied positions.
func (idx *PositionIndex) Len() int {
	return int(idx.count.Load())
}

// CopyContents returns a point-in-time copy of every occupied slot.
// Each slot is read with a single atomic load, so a racing insert is
// observed either entirely before or entirely after the copy for that
// slot, never partially.
func (idx *PositionIndex) CopyContents() map[int]*model.VersionedRecord {
	contents := make(map[int]*model.VersionedRecord, idx.Len())
	for pos := range idx.slots {
		if rec := idx.slots[pos].Load(); rec != nil {
			contents[pos] = rec
		}
	}
	return contents
}
