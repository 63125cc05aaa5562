package service

import (
	"time"

	"github.com/signalworks/flux-matrix/internal/matrix"
	"github.com/signalworks/flux-matrix/internal/metrics"
	"github.com/signalworks/flux-matrix/internal/model"
	"go.uber.org/zap"
)

// MatrixService is the orchestration layer over the flux matrix core.
// A single insert fans out to the version authority, the insertion
// log, the position index, and the attribute index; reads go straight
// to the live indices or to a captured snapshot.
type MatrixService struct {
	subject   string
	versions  *matrix.VersionAuthority
	log       *matrix.InsertionLog
	positions *matrix.PositionIndex
	attrs     *matrix.AttributeIndex
	snapshots *matrix.SnapshotManager
	anchors   *matrix.AnchorRegistry
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// MatrixConfig holds engine configuration.
type MatrixConfig struct {
	Subject       string
	PositionSpace int
}

// NewMatrixService creates a fully wired engine.
func NewMatrixService(cfg *MatrixConfig, m *metrics.Metrics, logger *zap.Logger) *MatrixService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatrixService{
		subject:   cfg.Subject,
		versions:  matrix.NewVersionAuthority(),
		log:       matrix.NewInsertionLog(),
		positions: matrix.NewPositionIndex(cfg.PositionSpace),
		attrs:     matrix.NewAttributeIndex(),
		snapshots: matrix.NewSnapshotManager(),
		anchors:   matrix.NewAnchorRegistry(),
		logger:    logger,
		metrics:   m,
	}
}

// PositionSpace returns the bounded key space size.
func (s *MatrixService) PositionSpace() int {
	return s.positions.Size()
}

// Insert stores a record at position and returns the version drawn for
// it. The record lands in the insertion log, the position index, and
// every attribute bucket its attributes imply. Concurrent inserts to
// the same position race on the index slot; the last applied store
// wins regardless of version order.
func (s *MatrixService) Insert(position int, record *model.Record) uint64 {
	startTime := time.Now()

	versioned := &model.VersionedRecord{
		Record:    record,
		Version:   s.versions.Next(),
		Timestamp: startTime,
	}

	s.log.Append(versioned)
	s.positions.InsertAt(position, versioned)
	s.attrs.Index(record.Attributes, versioned)

	if s.metrics != nil {
		s.metrics.InsertsTotal.Inc()
		s.metrics.InsertDuration.Observe(time.Since(startTime).Seconds())
		s.metrics.CurrentVersion.Set(float64(versioned.Version))
		s.metrics.OccupiedPositions.Set(float64(s.positions.Len()))
		s.metrics.LogLength.Set(float64(s.log.Len()))
	}

	s.logger.Debug("Insert completed",
		zap.Int("position", position),
		zap.Uint64("version", versioned.Version),
		zap.Int("attributes", len(record.Attributes)),
		zap.Duration("latency", time.Since(startTime)))

	return versioned.Version
}

// Get returns the current record at position, or nil if never written.
func (s *MatrixService) Get(position int) *model.VersionedRecord {
	rec := s.positions.Get(position)

	if s.metrics != nil {
		s.metrics.GetsTotal.Inc()
		if rec != nil {
			s.metrics.GetHitsTotal.Inc()
		} else {
			s.metrics.GetMissesTotal.Inc()
		}
	}
	return rec
}

// QueryByAttribute returns every record whose quantized attribute value
// lies within [min, max] under name. Recall is bounded by quantization.
func (s *MatrixService) QueryByAttribute(name string, min, max float64) []*model.VersionedRecord {
	startTime := time.Now()

	results := s.attrs.QueryRange(name, min, max)

	if s.metrics != nil {
		s.metrics.QueriesTotal.Inc()
		s.metrics.QueryDuration.Observe(time.Since(startTime).Seconds())
		s.metrics.QueryResultSize.Observe(float64(len(results)))
		s.metrics.AttributeBuckets.WithLabelValues(name).Set(float64(s.attrs.BucketCount(name)))
	}

	s.logger.Debug("Attribute query completed",
		zap.String("attribute", name),
		zap.Float64("min", min),
		zap.Float64("max", max),
		zap.Int("results", len(results)),
		zap.Duration("latency", time.Since(startTime)))

	return results
}

// RegisterAnchor installs judgment parameters at position.
func (s *MatrixService) RegisterAnchor(position int, orbitalRadius, judgmentThreshold float64) {
	s.anchors.Register(position, orbitalRadius, judgmentThreshold)

	s.logger.Info("Anchor registered",
		zap.Int("position", position),
		zap.Float64("orbital_radius", orbitalRadius),
		zap.Float64("judgment_threshold", judgmentThreshold))
}

// Judge classifies an external entropy signal at position. Pure and
// total: positions without an anchor always judge Allow.
func (s *MatrixService) Judge(position int, entropy float64) model.Judgment {
	j := s.anchors.Judge(position, entropy)
	if s.metrics != nil {
		s.metrics.JudgmentsTotal.WithLabelValues(j.String()).Inc()
	}
	return j
}

// Snapshot captures an isolated copy of the position index and returns
// the version it is keyed under. This is the engine's only structurally
// locked operation and is O(n) in index size.
func (s *MatrixService) Snapshot() uint64 {
	startTime := time.Now()

	version := s.snapshots.Capture(s.positions, s.versions.Current())

	if s.metrics != nil {
		s.metrics.SnapshotsTotal.Inc()
		s.metrics.SnapshotDuration.Observe(time.Since(startTime).Seconds())
		s.metrics.SnapshotsRetained.Set(float64(s.snapshots.Count()))
	}

	s.logger.Info("Snapshot captured",
		zap.Uint64("version", version),
		zap.Duration("latency", time.Since(startTime)))

	return version
}

// GetFromSnapshot resolves a position within the snapshot stored under
// the exact version key. Unknown version keys do not resolve, even if
// they fall between two stored snapshots.
func (s *MatrixService) GetFromSnapshot(version uint64, position int) *model.VersionedRecord {
	return s.snapshots.Get(version, position)
}

// SnapshotVersions returns the retained snapshot keys in ascending order.
func (s *MatrixService) SnapshotVersions() []uint64 {
	return s.snapshots.Versions()
}

// GCSnapshots keeps the keepLatest most recent snapshots and drops the
// rest, returning how many were removed. Oversized keepLatest is
// clamped, never an error.
func (s *MatrixService) GCSnapshots(keepLatest int) int {
	dropped := s.snapshots.GC(keepLatest)

	if s.metrics != nil {
		s.metrics.SnapshotGCsTotal.Inc()
		s.metrics.SnapshotsDropped.Add(float64(dropped))
		s.metrics.SnapshotsRetained.Set(float64(s.snapshots.Count()))
	}

	if dropped > 0 {
		s.logger.Info("Snapshot GC completed",
			zap.Int("keep_latest", keepLatest),
			zap.Int("dropped", dropped),
			zap.Int("retained", s.snapshots.Count()))
	}
	return dropped
}

// Replay walks the insertion log in arrival order, oldest first.
func (s *MatrixService) Replay(fn func(*model.VersionedRecord) bool) {
	s.log.Replay(fn)
}

// Len returns the number of occupied positions.
func (s *MatrixService) Len() int {
	return s.positions.Len()
}

// IsEmpty reports whether no position has ever been written.
func (s *MatrixService) IsEmpty() bool {
	return s.positions.Len() == 0
}

// Stats summarizes the live engine state.
func (s *MatrixService) Stats() model.MatrixStats {
	return model.MatrixStats{
		Subject:         s.subject,
		TotalNodes:      s.positions.Len(),
		AnchorPositions: s.anchors.Positions(),
		CurrentVersion:  s.versions.Current(),
		SnapshotCount:   s.snapshots.Count(),
		LogLength:       s.log.Len(),
	}
}
