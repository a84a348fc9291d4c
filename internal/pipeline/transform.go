package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

// NoiseFactory returns the noise source for one district.
type NoiseFactory func(districtID string) hydrology.NoiseSource

// SeededNoise returns a factory that derives each district's stream from seed
// and the district ID, so results do not depend on processing order. A zero
// seed selects fresh entropy per district.
func SeededNoise(seed uint64) NoiseFactory {
	if seed == 0 {
		return func(string) hydrology.NoiseSource { return hydrology.NewEntropyNoise() }
	}
	return func(districtID string) hydrology.NoiseSource {
		return hydrology.NewUniformNoise(hydrology.DeriveSeed(seed, districtID))
	}
}

// DistrictTransformer implements Transformer using domain enrichment, the
// hydrology model chain and optional geocoding.
type DistrictTransformer struct {
	params   domain.FloodParams
	noise    NoiseFactory
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a DistrictTransformer. Pass a nil geocoder to disable
// geocoding enrichment; a nil noise factory uses entropy.
func NewTransformer(params domain.FloodParams, noise NoiseFactory, geocoder domain.Geocoder, logger *slog.Logger) *DistrictTransformer {
	if noise == nil {
		noise = SeededNoise(0)
	}
	return &DistrictTransformer{
		params:   params,
		noise:    noise,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Transform parses a source-topic message and assesses the district.
func (t *DistrictTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.DistrictReport, error) {
	rec, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.DistrictReport{}, err
	}
	return t.Assess(ctx, rec)
}

// Assess enriches a parsed record with metrics, a flood assessment and,
// when configured, coordinates.
func (t *DistrictTransformer) Assess(ctx context.Context, rec domain.DistrictRecord) (domain.DistrictReport, error) {
	report := domain.EnrichDistrict(rec)

	report, err := domain.AssessFlood(report, t.params, t.noise(report.ID))
	if err != nil {
		return domain.DistrictReport{}, err
	}

	return domain.EnrichWithGeocoding(ctx, report, t.geocoder, t.logger), nil
}
