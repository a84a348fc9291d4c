package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.DistrictReport, error) {
	if m.err != nil {
		return domain.DistrictReport{}, m.err
	}
	return domain.DistrictReport{
		ID:    string(raw.Key),
		Flood: hydrology.Assessment{RiskLabel: hydrology.RiskHigh.Label()},
	}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.DistrictReport
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, reports []domain.DistrictReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, reports...)
	return nil
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- pipeline tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawEvent(t, "IDUKKI")

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, "IDUKKI", ldr.loaded[0].ID)
	assert.NoError(t, p.CheckReadiness(context.Background()))

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Assessments.WithLabelValues("HIGH")), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsAndCommits(t *testing.T) {
	committed := false
	raw := makeRawEvent(t, "BROKEN")
	raw.Commit = func(_ context.Context) error {
		committed = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad row")}, ldr, discardLogger(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.True(t, committed, "poison rows are committed so they are not redelivered")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.TransformErrors), 0)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var commits atomic.Int32
	batch := []domain.RawEvent{makeRawEvent(t, "PUNE"), makeRawEvent(t, "PATNA")}
	for i := range batch {
		batch[i].Commit = func(_ context.Context) error {
			commits.Add(1)
			return nil
		}
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 2, ldr.count())
	assert.Equal(t, int32(2), commits.Load())
}

func TestPipeline_Run_LoadErrorDoesNotCommit(t *testing.T) {
	committed := false
	raw := makeRawEvent(t, "CHENNAI")
	raw.Commit = func(_ context.Context) error {
		committed = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{err: errors.New("broker down")}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.False(t, committed)
}

// --- transformer tests ---

func TestDistrictTransformer_Transform(t *testing.T) {
	tfm := pipeline.NewTransformer(domain.FloodParams{DurationHours: 24}, pipeline.SeededNoise(7), nil, discardLogger())

	out, err := tfm.Transform(context.Background(), makeRawEvent(t, "IDUKKI"))
	require.NoError(t, err)

	assert.Equal(t, "IDUKKI", out.District)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, domain.BasisMonsoon, out.RainfallBasis)
	assert.Equal(t, "EXTREME", out.Flood.RiskLabel)
	assert.Len(t, out.Flood.Progression, 25)
	assert.Empty(t, out.GeoSource)
}

func TestDistrictTransformer_InvalidPayload(t *testing.T) {
	tfm := pipeline.NewTransformer(domain.FloodParams{}, nil, nil, discardLogger())

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestSeededNoise_PerDistrictStreams(t *testing.T) {
	factory := pipeline.SeededNoise(11)

	a := factory("district-a")
	b := factory("district-a")
	c := factory("district-b")

	first := a.Next()
	assert.InDelta(t, first, b.Next(), 0, "same district, same stream")
	assert.NotEqual(t, first, c.Next())
}

// --- fan-out tests ---

func TestAssessAll_OrderAndDeterminism(t *testing.T) {
	records := loadMockRecords(t)
	params := domain.FloodParams{DurationHours: 48}

	sequential, err := pipeline.AssessAll(context.Background(),
		pipeline.NewTransformer(params, pipeline.SeededNoise(2024), nil, discardLogger()), records, 1)
	require.NoError(t, err)
	parallel, err := pipeline.AssessAll(context.Background(),
		pipeline.NewTransformer(params, pipeline.SeededNoise(2024), nil, discardLogger()), records, 8)
	require.NoError(t, err)

	require.Len(t, parallel, len(records))
	for i := range records {
		assert.Equal(t, records[i].District, parallel[i].District)
	}

	progressions := func(reports []domain.DistrictReport) [][]float64 {
		out := make([][]float64, len(reports))
		for i, r := range reports {
			out[i] = r.Flood.Progression
		}
		return out
	}
	if diff := cmp.Diff(progressions(sequential), progressions(parallel)); diff != "" {
		t.Fatalf("worker count changed seeded output (-sequential +parallel):\n%s", diff)
	}
}

type failingAssessor struct{}

func (failingAssessor) Assess(_ context.Context, rec domain.DistrictRecord) (domain.DistrictReport, error) {
	if rec.District == "PUNE" {
		return domain.DistrictReport{}, errors.New("boom")
	}
	return domain.DistrictReport{DistrictRecord: rec}, nil
}

func TestAssessAll_PropagatesError(t *testing.T) {
	records := loadMockRecords(t)

	_, err := pipeline.AssessAll(context.Background(), failingAssessor{}, records, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAssessAll_Empty(t *testing.T) {
	reports, err := pipeline.AssessAll(context.Background(), failingAssessor{}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

// --- helpers ---

func makeRawEvent(t *testing.T, district string) domain.RawEvent {
	t.Helper()
	row := domain.RawRainfallRow{
		domain.ColumnState:    "KERALA",
		domain.ColumnDistrict: district,
		domain.ColumnAnnual:   "3491.2",
		domain.ColumnMonsoon:  "2461.0",
	}
	for _, m := range domain.Months {
		row[m.Column] = "100"
	}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(district),
		Value: data,
	}
}
