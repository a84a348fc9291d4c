package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

type endlessExtractor struct{}

func (endlessExtractor) ExtractBatch(_ context.Context, _ int) ([]domain.RawEvent, error) {
	return []domain.RawEvent{{Key: []byte("IDUKKI")}}, nil
}

type passThrough struct{}

func (passThrough) Transform(_ context.Context, raw domain.RawEvent) (domain.DistrictReport, error) {
	return domain.DistrictReport{ID: string(raw.Key)}, nil
}

type switchableLoader struct {
	err error
}

func (l *switchableLoader) LoadBatch(_ context.Context, _ []domain.DistrictReport) error {
	return l.err
}

func TestCycle_BackoffGrowsWhileSinkFails(t *testing.T) {
	ldr := &switchableLoader{err: errors.New("broker down")}
	p := New(endlessExtractor{}, passThrough{}, ldr, slog.New(slog.DiscardHandler), observability.NewMetricsForTesting(), 10)

	b := &backoff{next: time.Millisecond}
	ctx := context.Background()

	require.True(t, p.cycle(ctx, b))
	assert.Equal(t, 2*time.Millisecond, b.next)
	require.True(t, p.cycle(ctx, b))
	assert.Equal(t, 4*time.Millisecond, b.next, "a healthy source must not reset the delay while the sink fails")
	assert.Error(t, p.CheckReadiness(ctx))

	ldr.err = nil
	require.True(t, p.cycle(ctx, b))
	assert.Equal(t, initialBackoff, b.next)
	assert.NoError(t, p.CheckReadiness(ctx))
}

func TestBackoff_StopsOnCancel(t *testing.T) {
	b := &backoff{next: maxBackoff / 2}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, b.wait(ctx), "cancelled context stops the wait")
	assert.Equal(t, maxBackoff/2, b.next)
}
