package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw rainfall row into a district report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.DistrictReport, error)
}

// BatchLoader writes multiple district reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.DistrictReport) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline moves raw rainfall rows from the extractor, through the district
// transformer, into the loader. Offsets are committed only once a report has
// been loaded or the row has been rejected as unparseable.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New wires the three stages together.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness reports ready once at least one district report has been
// delivered to the sink.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ready.Load() {
		return nil
	}
	return errors.New("no district reports delivered yet")
}

// Run consumes batches until ctx is cancelled. Extract and load failures are
// retried with exponential backoff; Run itself only returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := &backoff{next: initialBackoff}
	for ctx.Err() == nil {
		if !p.cycle(ctx, b) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// cycle runs one extract, transform and load round and reports whether the
// loop should continue.
func (p *Pipeline) cycle(ctx context.Context, b *backoff) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	switch {
	case err != nil && ctx.Err() != nil:
		return false
	case err != nil:
		p.logger.Error("extract batch failed", "error", err)
		return b.wait(ctx)
	case len(batch) == 0:
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	reports, accepted := p.transformBatch(ctx, batch)
	if len(reports) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, reports); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(reports))
		return b.wait(ctx)
	}
	b.reset()
	p.metrics.MessagesProduced.Add(float64(len(reports)))
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// transformBatch returns the reports that transformed cleanly together with
// their source events. Rows that fail are counted, committed and dropped.
func (p *Pipeline) transformBatch(ctx context.Context, batch []domain.RawEvent) ([]domain.DistrictReport, []domain.RawEvent) {
	reports := make([]domain.DistrictReport, 0, len(batch))
	accepted := make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		report, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("skipping unparseable rainfall row",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		p.observe(report)
		reports = append(reports, report)
		accepted = append(accepted, raw)
	}
	return reports, accepted
}

func (p *Pipeline) observe(report domain.DistrictReport) {
	p.metrics.Assessments.WithLabelValues(report.Flood.RiskLabel).Inc()
	if report.GeoSource != "" {
		p.metrics.GeocodeRequests.WithLabelValues(report.GeoSource).Inc()
	}
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"district_key", string(raw.Key), "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff tracks the retry delay between failed extract or load attempts.
type backoff struct {
	next time.Duration
}

func (b *backoff) reset() { b.next = initialBackoff }

// wait sleeps for the current delay and doubles it up to maxBackoff. It
// returns false if ctx ends first.
func (b *backoff) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, b.next) {
		return false
	}
	b.next = retry.NextBackoff(b.next, maxBackoff)
	return true
}
