package matrix

import (
	"sort"
	"sync"

	"github.com/signalworks/flux-matrix/internal/model"
)

// StabilizeFloor is the entropy level below which an anchor judges the
// signal to have converged.
const StabilizeFloor = 0.1

// AnchorRegistry is the side table of distinguished positions that
// carry judgment parameters. Registration happens at boot or rarely
// afterwards; Judge is the hot read path.
type AnchorRegistry struct {
	mu      sync.RWMutex
	anchors map[int]model.Anchor
}

// NewAnchorRegistry creates an empty registry.
func NewAnchorRegistry() *AnchorRegistry {
	return &AnchorRegistry{
		anchors: make(map[int]model.Anchor),
	}
}

// Register installs or replaces the anchor at position.
func (r *AnchorRegistry) Register(position int, orbitalRadius, judgmentThreshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.anchors[position] = model.Anchor{
		Position:          position,
		OrbitalRadius:     orbitalRadius,
		JudgmentThreshold: judgmentThreshold,
	}
}

// Lookup returns the anchor registered at position, if any.
func (r *AnchorRegistry) Lookup(position int) (model.Anchor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.anchors[position]
	return a, ok
}

// Positions returns the registered anchor positions in ascending order.
func (r *AnchorRegistry) Positions() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions := make([]int, 0, len(r.anchors))
	for p := range r.anchors {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions
}

// Judge classifies an external entropy signal at a position. It is
// deterministic, side-effect-free, and total: non-anchor positions
// always judge Allow since no threshold is defined there.
func (r *AnchorRegistry) Judge(position int, entropy float64) model.Judgment {
	anchor, ok := r.Lookup(position)
	if !ok {
		return model.JudgmentAllow
	}
	switch {
	case entropy > anchor.JudgmentThreshold:
		return model.JudgmentReverse
	case entropy < StabilizeFloor:
		return model.JudgmentStabilize
	default:
		return model.JudgmentAllow
	}
}
