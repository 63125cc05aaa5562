package model

import "time"

// Record is an opaque application payload plus named numeric attributes.
// It is produced by the caller and never mutated after construction.
type Record struct {
	Subject    string
	Payload    []byte
	Attributes map[string]float64
}

// VersionedRecord wraps a Record with the version drawn at insert time.
// It is shared by the position index, every attribute bucket it matched,
// the insertion log, and any snapshot taken while it was current, so it
// must be treated as immutable by all holders.
type VersionedRecord struct {
	Record    *Record
	Version   uint64
	Timestamp time.Time
}

// Anchor is a distinguished position carrying judgment parameters.
// Anchors store data like any other position; this is purely a side
// table consulted by Judge.
type Anchor struct {
	Position          int
	OrbitalRadius     float64
	JudgmentThreshold float64
}

// Judgment classifies an external scalar signal at a position.
type Judgment int

const (
	JudgmentAllow Judgment = iota
	JudgmentReverse
	JudgmentStabilize
)

// String returns the wire name of the judgment.
func (j Judgment) String() string {
	switch j {
	case JudgmentReverse:
		return "reverse"
	case JudgmentStabilize:
		return "stabilize"
	default:
		return "allow"
	}
}

// MatrixStats summarizes the live state of the engine.
type MatrixStats struct {
	Subject         string
	TotalNodes      int
	AnchorPositions []int
	CurrentVersion  uint64
	SnapshotCount   int
	LogLength       int
}
