package matrix

import (
	"sync/atomic"

	"github.com/signalworks/flux-matrix/internal/model"
)

// logNode is a single cell in the insertion log's lock-free list.
type logNode struct {
	record *model.VersionedRecord
	next   *logNode
}

// InsertionLog is an unbounded, append-only, multi-producer record of
// every insert in arrival order. It is never consulted for point
// lookups; it exists for audit and replay.
type InsertionLog struct {
	head   atomic.Pointer[logNode]
	length atomic.Int64
}

// NewInsertionLog creates an empty insertion log.
func NewInsertionLog() *InsertionLog {
	return &InsertionLog{}
}

// Append pushes a record onto the log. Lock-free: contending producers
// retry a compare-and-swap on the head pointer. Per-producer arrival
// order is preserved; cross-producer ordering is whatever the CAS race
// decides, with each record's Version field carrying the global order.
func (l *InsertionLog) Append(rec *model.VersionedRecord) {
	node := &logNode{record: rec}
	for {
		head := l.head.Load()
		node.next = head
		if l.head.CompareAndSwap(head, node) {
			l.length.Add(1)
			return
		}
	}
}

// Len returns the number of appended records.
func (l *InsertionLog) Len() int {
	return int(l.length.Load())
}

// Replay invokes fn for every record in arrival order, oldest first,
// over the log as it existed when Replay was called. Returning false
// from fn stops the walk.
func (l *InsertionLog) Replay(fn func(*model.VersionedRecord) bool) {
	// The list hangs newest-first off head; collect and walk backwards.
	var stack []*model.VersionedRecord
	for node := l.head.Load(); node != nil; node = node.next {
		stack = append(stack, node.record)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if !fn(stack[i]) {
			return
		}
	}
}
