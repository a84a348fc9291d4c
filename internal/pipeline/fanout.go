package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Assessor turns a parsed record into a district report.
type Assessor interface {
	Assess(ctx context.Context, rec domain.DistrictRecord) (domain.DistrictReport, error)
}

// AssessAll assesses records concurrently with at most workers goroutines and
// returns reports in input order. The first failure cancels the remaining work.
func AssessAll(ctx context.Context, a Assessor, records []domain.DistrictRecord, workers int) ([]domain.DistrictReport, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	reports := make([]domain.DistrictReport, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := a.Assess(ctx, records[i])
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
