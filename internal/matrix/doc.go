// Package matrix implements the flux matrix core: a position-indexed
// concurrent store with multi-version snapshot isolation and
// anchor-based judgment.
//
// The engine is built from five pieces, leaves first: a VersionAuthority
// issuing globally ordered version numbers, a lock-free InsertionLog of
// every write in arrival order, a lock-free PositionIndex holding the
// latest record per bounded position, an append-only AttributeIndex for
// approximate range queries over named numeric attributes, and a
// SnapshotManager keeping coarse-locked point-in-time copies of the
// position index. The AnchorRegistry sits beside storage and classifies
// external scalar signals without touching it.
//
// Nothing in this package returns an error: absence is a nil record,
// and nonsensical garbage-collection arguments are clamped.
package matrix
