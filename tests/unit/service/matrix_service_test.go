package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/signalworks/flux-matrix/internal/metrics"
	"github.com/signalworks/flux-matrix/internal/model"
	"github.com/signalworks/flux-matrix/internal/service"
	"github.com/signalworks/flux-matrix/internal/util/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(t *testing.T) *service.MatrixService {
	t.Helper()
	return service.NewMatrixService(
		&service.MatrixConfig{Subject: "test-flux", PositionSpace: 10},
		nil,
		zap.NewNop(),
	)
}

func record(subject string, attrs map[string]float64) *model.Record {
	return &model.Record{Subject: subject, Attributes: attrs}
}

func TestMatrixService_InsertVisibility(t *testing.T) {
	svc := newEngine(t)

	v := svc.Insert(5, record("a", nil))

	got := svc.Get(5)
	require.NotNil(t, got)
	assert.Equal(t, v, got.Version)
	assert.Equal(t, "a", got.Record.Subject)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Second)
}

func TestMatrixService_EndToEndScenario(t *testing.T) {
	svc := newEngine(t)

	// Insert A at position 5.
	vA := svc.Insert(5, record("A", nil))
	assert.Equal(t, uint64(1), vA)
	got := svc.Get(5)
	require.NotNil(t, got)
	assert.Equal(t, vA, got.Version)

	// Snapshot, then supersede A with B.
	snapVersion := svc.Snapshot()
	vB := svc.Insert(5, record("B", nil))
	assert.Equal(t, uint64(2), vB)

	// Live view sees B; the snapshot still sees A.
	live := svc.Get(5)
	require.NotNil(t, live)
	assert.Equal(t, "B", live.Record.Subject)
	assert.Equal(t, vB, live.Version)

	snap := svc.GetFromSnapshot(snapVersion, 5)
	require.NotNil(t, snap)
	assert.Equal(t, "A", snap.Record.Subject)
	assert.Equal(t, vA, snap.Version)
}

func TestMatrixService_QueryByAttribute(t *testing.T) {
	svc := newEngine(t)

	svc.Insert(1, record("hot", map[string]float64{"heat": 0.9}))
	svc.Insert(2, record("warm", map[string]float64{"heat": 0.5}))
	svc.Insert(3, record("cold", map[string]float64{"heat": 0.1}))

	results := svc.QueryByAttribute("heat", 0.4, 1.0)
	require.Len(t, results, 2)

	subjects := map[string]bool{}
	for _, r := range results {
		subjects[r.Record.Subject] = true
	}
	assert.True(t, subjects["hot"])
	assert.True(t, subjects["warm"])
}

func TestMatrixService_JudgeContract(t *testing.T) {
	svc := newEngine(t)
	svc.RegisterAnchor(3, 1.0, 0.5)

	assert.Equal(t, model.JudgmentReverse, svc.Judge(3, 0.8))
	assert.Equal(t, model.JudgmentStabilize, svc.Judge(3, 0.05))
	assert.Equal(t, model.JudgmentAllow, svc.Judge(3, 0.3))
	assert.Equal(t, model.JudgmentAllow, svc.Judge(7, 0.9))
}

func TestMatrixService_GCSnapshots(t *testing.T) {
	svc := newEngine(t)

	svc.Insert(0, record("x", nil))
	var versions []uint64
	for i := 0; i < 4; i++ {
		// Distinct versions per snapshot key.
		svc.Insert(1, record("bump", nil))
		versions = append(versions, svc.Snapshot())
	}
	require.Len(t, svc.SnapshotVersions(), 4)

	dropped := svc.GCSnapshots(2)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, versions[2:], svc.SnapshotVersions())

	// Clamped when keep_latest exceeds the table.
	assert.Equal(t, 0, svc.GCSnapshots(100))
	assert.Len(t, svc.SnapshotVersions(), 2)
}

func TestMatrixService_LenAndStats(t *testing.T) {
	svc := newEngine(t)
	assert.True(t, svc.IsEmpty())
	assert.Equal(t, 0, svc.Len())

	svc.RegisterAnchor(0, 1.0, 0.5)
	svc.RegisterAnchor(9, 4.0, 0.8)
	svc.Insert(0, record("a", map[string]float64{"heat": 0.2}))
	svc.Insert(4, record("b", nil))
	svc.Insert(4, record("c", nil))

	assert.False(t, svc.IsEmpty())
	assert.Equal(t, 2, svc.Len())

	stats := svc.Stats()
	assert.Equal(t, "test-flux", stats.Subject)
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, []int{0, 9}, stats.AnchorPositions)
	assert.Equal(t, uint64(3), stats.CurrentVersion)
	assert.Equal(t, 3, stats.LogLength)
}

func TestMatrixService_Replay(t *testing.T) {
	svc := newEngine(t)

	svc.Insert(1, record("first", nil))
	svc.Insert(2, record("second", nil))
	svc.Insert(1, record("third", nil))

	var order []string
	svc.Replay(func(rec *model.VersionedRecord) bool {
		order = append(order, rec.Record.Subject)
		return true
	})
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestMatrixService_ConcurrentInserts(t *testing.T) {
	svc := newEngine(t)

	const writers = 10
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				svc.Insert(w, record("w", map[string]float64{"load": float64(w)}))
			}
		}(w)
	}
	wg.Wait()

	stats := svc.Stats()
	assert.Equal(t, uint64(writers*perWriter), stats.CurrentVersion)
	assert.Equal(t, writers*perWriter, stats.LogLength)
	assert.Equal(t, writers, svc.Len())

	// Single writer per position: the slot holds that writer's last insert.
	for w := 0; w < writers; w++ {
		require.NotNil(t, svc.Get(w))
	}
}

func TestMatrixService_WithMetrics(t *testing.T) {
	// promauto registers globally, so metrics are created once per test binary.
	m := metrics.NewMetrics("test-node")
	svc := service.NewMatrixService(
		&service.MatrixConfig{Subject: "metered", PositionSpace: 10},
		m,
		zap.NewNop(),
	)

	svc.RegisterAnchor(1, 1.0, 0.5)
	svc.Insert(1, record("a", map[string]float64{"heat": 0.3}))
	svc.Get(1)
	svc.Get(2)
	svc.QueryByAttribute("heat", 0, 1)
	svc.Judge(1, 0.8)
	version := svc.Snapshot()
	svc.GCSnapshots(0)

	assert.NotZero(t, version)
	assert.Nil(t, svc.GetFromSnapshot(version, 1)) // dropped by GC
}

func TestRetentionService_SweepsOldSnapshots(t *testing.T) {
	svc := newEngine(t)
	svc.Insert(0, record("x", nil))
	for i := 0; i < 5; i++ {
		svc.Insert(1, record("bump", nil))
		svc.Snapshot()
	}
	require.Len(t, svc.SnapshotVersions(), 5)

	pool := workerpool.New(&workerpool.Config{Name: "test", MaxWorkers: 1, QueueSize: 4})
	defer pool.Stop(time.Second)

	retention := service.NewRetentionService(
		&service.RetentionConfig{KeepLatest: 2, Interval: 10 * time.Millisecond},
		svc,
		pool,
		zap.NewNop(),
	)
	retention.Start()
	defer retention.Stop()

	assert.Eventually(t, func() bool {
		return len(svc.SnapshotVersions()) == 2
	}, time.Second, 10*time.Millisecond)
}
