// Command genmock reads the district rainfall sample CSV and generates the
// mock fixtures used by the pipeline, Kafka and validation tests. It runs the
// real transformer so the report fixture matches pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/district_rainfall_sample.csv \
//	  -raw-out data/mock/raw_rainfall_rows.json \
//	  -reports-out data/mock/district_reports.json \
//	  -xlsx-out data/mock/district_rainfall_sample.xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/dataset"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
)

// fixtureTime stamps ProcessedAt on every generated report.
var fixtureTime = time.Date(2026, time.July, 1, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "data/mock/district_rainfall_sample.csv", "district rainfall sample CSV")
	rawOut := flag.String("raw-out", "data/mock/raw_rainfall_rows.json", "output path for raw row fixture")
	reportsOut := flag.String("reports-out", "data/mock/district_reports.json", "output path for district report fixture")
	xlsxOut := flag.String("xlsx-out", "", "optional output path for an XLSX copy of the sample")
	flag.Parse()

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rows, err := dataset.NewStore(*csvPath, "", logger).Rows()
	if err != nil {
		return fmt.Errorf("read sample: %w", err)
	}

	// Keep only the columns the pipeline consumes.
	columns := fixtureColumns()
	raw := make([]domain.RawRainfallRow, 0, len(rows))
	for _, row := range rows {
		trimmed := make(domain.RawRainfallRow, len(columns))
		for _, c := range columns {
			trimmed[c] = row[c]
		}
		raw = append(raw, trimmed)
	}

	reports, err := transformAll(raw)
	if err != nil {
		return err
	}
	log.Printf("total: %d districts", len(reports))

	if err := writeJSON(*rawOut, raw); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*reportsOut, reports); err != nil {
		return fmt.Errorf("writing report fixture: %w", err)
	}
	log.Printf("wrote report fixture: %s", *reportsOut)

	if *xlsxOut != "" {
		if err := dataset.WriteXLSX(*xlsxOut, columns, raw); err != nil {
			return fmt.Errorf("writing xlsx sample: %w", err)
		}
		log.Printf("wrote xlsx sample: %s", *xlsxOut)
	}

	printStats(reports)
	return nil
}

// fixtureColumns is the dataset's required columns plus the monsoon total.
func fixtureColumns() []string {
	return append(domain.RequiredColumns(), domain.ColumnMonsoon)
}

// fixtureTransformer assesses with default parameters and an unperturbed
// progression so fixtures are identical on every run.
func fixtureTransformer() *pipeline.DistrictTransformer {
	noNoise := func(string) hydrology.NoiseSource { return hydrology.NoNoise{} }
	return pipeline.NewTransformer(domain.FloodParams{}, noNoise, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func transformAll(rows []domain.RawRainfallRow) ([]domain.DistrictReport, error) {
	t := fixtureTransformer()
	reports := make([]domain.DistrictReport, 0, len(rows))
	for i, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshal row %d: %w", i, err)
		}
		// Run the actual ETL transformation.
		report, err := t.Transform(context.Background(), domain.RawEvent{
			Key:       []byte(row[domain.ColumnDistrict]),
			Value:     payload,
			Timestamp: fixtureTime,
		})
		if err != nil {
			return nil, fmt.Errorf("transform row %d: %w", i, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(reports []domain.DistrictReport) {
	tiers := make(map[string]int)
	states := make(map[string]int)
	for _, r := range reports {
		tiers[r.Flood.RiskLabel]++
		states[r.State]++
	}

	log.Println("risk tiers:")
	for _, t := range hydrology.RiskTiers() {
		log.Printf("  %-8s %d", t.Label(), tiers[t.Label()])
	}

	names := make([]string, 0, len(states))
	for s := range states {
		names = append(names, s)
	}
	sort.Strings(names)
	log.Println("states:")
	for _, s := range names {
		log.Printf("  %-20s %d", s, states[s])
	}
}
