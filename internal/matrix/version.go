package matrix

import "sync/atomic"

// VersionAuthority issues globally unique, monotonically increasing
// version numbers. It is the only cross-thread ordering primitive in
// the engine.
type VersionAuthority struct {
	counter atomic.Uint64
}

// NewVersionAuthority creates a version authority starting at zero.
func NewVersionAuthority() *VersionAuthority {
	return &VersionAuthority{}
}

// Next returns a version never returned before. Safe for any number of
// concurrent callers; uniqueness is guaranteed by the atomic increment.
func (va *VersionAuthority) Next() uint64 {
	return va.counter.Add(1)
}

// Current returns the most recently issued version, or zero if none.
func (va *VersionAuthority) Current() uint64 {
	return va.counter.Load()
}
