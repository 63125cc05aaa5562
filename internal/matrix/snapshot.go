package matrix

import (
	"sort"
	"sync"

	"github.com/signalworks/flux-matrix/internal/model"
)

// SnapshotManager keeps version-keyed point-in-time copies of the
// position index. It is the one component in the engine guarded by a
// coarse structural lock; snapshots are expected to be rare relative
// to inserts and gets.
type SnapshotManager struct {
	mu        sync.RWMutex
	snapshots map[uint64]map[int]*model.VersionedRecord
}

// NewSnapshotManager creates an empty snapshot table.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{
		snapshots: make(map[uint64]map[int]*model.VersionedRecord),
	}
}

// Capture copies the full position index under the table's write lock
// and stores it keyed by the version authority's current counter value,
// which it returns. A later capture at the same version overwrites the
// earlier one; the contents are equivalent by definition of the key.
func (sm *SnapshotManager) Capture(idx *PositionIndex, version uint64) uint64 {
	sm.mu.Lock()
	sm.snapshots[version] = idx.CopyContents()
	sm.mu.Unlock()

	return version
}

// Get resolves a position within the snapshot stored under the exact
// version key. Versions never passed to Capture do not resolve, even
// if they fall between two stored snapshots.
func (sm *SnapshotManager) Get(version uint64, position int) *model.VersionedRecord {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	contents, ok := sm.snapshots[version]
	if !ok {
		return nil
	}
	return contents[position]
}

// Count returns the number of retained snapshots.
func (sm *SnapshotManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.snapshots)
}

// Versions returns the stored snapshot keys in ascending order.
func (sm *SnapshotManager) Versions() []uint64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	versions := make([]uint64, 0, len(sm.snapshots))
	for v := range sm.snapshots {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions
}

// GC deletes all but the keepLatest highest-versioned snapshots and
// returns how many were removed. keepLatest larger than the table is
// clamped rather than treated as an error.
func (sm *SnapshotManager) GC(keepLatest int) int {
	if keepLatest < 0 {
		keepLatest = 0
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.snapshots) <= keepLatest {
		return 0
	}

	versions := make([]uint64, 0, len(sm.snapshots))
	for v := range sm.snapshots {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	toDelete := versions[:len(versions)-keepLatest]
	for _, v := range toDelete {
		delete(sm.snapshots, v)
	}
	return len(toDelete)
}
