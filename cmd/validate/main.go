// Command validate performs end-to-end integrity checks across the mock data
// sources: the sample CSV, the raw row fixture and the district report
// fixture. It verifies row parity, transformation reproducibility and the
// hydrology invariants every report must satisfy.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/district_rainfall_sample.csv \
//	  -raw-json data/mock/raw_rainfall_rows.json \
//	  -reports-json data/mock/district_reports.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/dataset"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
)

// fixtureTime matches genmock so IDs and timestamps reproduce.
var fixtureTime = time.Date(2026, time.July, 1, 6, 0, 0, 0, time.UTC)

const tolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "data/mock/district_rainfall_sample.csv", "district rainfall sample CSV")
	rawJSON := flag.String("raw-json", "data/mock/raw_rainfall_rows.json", "raw row fixture")
	reportsJSON := flag.String("reports-json", "data/mock/district_reports.json", "district report fixture")
	flag.Parse()

	if code := run(*csvPath, *rawJSON, *reportsJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, rawJSONPath, reportsJSONPath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Flood Risk Fixture Validation ===")
	fmt.Println()

	csvRows, err := dataset.NewStore(csvPath, "", slog.New(slog.NewTextHandler(io.Discard, nil))).Rows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	rawRows, err := loadJSON[domain.RawRainfallRow](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	reports, err := loadJSON[domain.DistrictReport](reportsJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load reports JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSourceParity(csvRows, rawRows),
		validateTransformation(rawRows, reports),
		validateInvariants(reports),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV, %d raw JSON, %d reports\n", len(csvRows), len(rawRows), len(reports))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// validateSourceParity checks the raw fixture carries the CSV's values.
func validateSourceParity(csvRows, rawRows []domain.RawRainfallRow) *phase {
	p := &phase{name: "CSV ↔ raw JSON parity"}
	if len(csvRows) != len(rawRows) {
		p.errorf("row count: CSV %d, raw JSON %d", len(csvRows), len(rawRows))
		return p
	}

	columns := append(domain.RequiredColumns(), domain.ColumnMonsoon)
	for i := range csvRows {
		for _, c := range columns {
			if csvRows[i][c] != rawRows[i][c] {
				p.errorf("row %d %s: CSV %q, raw JSON %q", i+1, c, csvRows[i][c], rawRows[i][c])
			}
		}
	}
	return p
}

// validateTransformation re-runs the transformer and compares against the
// report fixture.
func validateTransformation(rawRows []domain.RawRainfallRow, reports []domain.DistrictReport) *phase {
	p := &phase{name: "Transformation reproducibility"}
	if len(rawRows) != len(reports) {
		p.errorf("count: raw JSON %d, reports %d", len(rawRows), len(reports))
		return p
	}

	noNoise := func(string) hydrology.NoiseSource { return hydrology.NoNoise{} }
	t := pipeline.NewTransformer(domain.FloodParams{}, noNoise, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i, row := range rawRows {
		payload, err := json.Marshal(row)
		if err != nil {
			p.errorf("row %d: marshal: %v", i+1, err)
			continue
		}
		got, err := t.Transform(context.Background(), domain.RawEvent{Value: payload})
		if err != nil {
			p.errorf("row %d: transform: %v", i+1, err)
			continue
		}

		want := reports[i]
		label := fmt.Sprintf("%s/%s", want.State, want.District)
		if got.ID != want.ID {
			p.errorf("%s: id %s, fixture %s", label, got.ID, want.ID)
		}
		if got.Flood.RiskLabel != want.Flood.RiskLabel {
			p.errorf("%s: risk %s, fixture %s", label, got.Flood.RiskLabel, want.Flood.RiskLabel)
		}
		if got.Metrics.PeakMonth != want.Metrics.PeakMonth {
			p.errorf("%s: peak month %s, fixture %s", label, got.Metrics.PeakMonth, want.Metrics.PeakMonth)
		}
		if !got.ProcessedAt.Equal(want.ProcessedAt) {
			p.errorf("%s: processed_at %s, fixture %s", label, got.ProcessedAt, want.ProcessedAt)
		}
		compare(p, label, "runoff_mm", got.Flood.RunoffMM, want.Flood.RunoffMM)
		compare(p, label, "depth_m", got.Flood.DepthM, want.Flood.DepthM)
		compare(p, label, "volume_m3", got.Flood.VolumeM3, want.Flood.VolumeM3)
		compare(p, label, "avg_monthly", got.Metrics.AvgMonthly, want.Metrics.AvgMonthly)
		compare(p, label, "std_monthly", got.Metrics.StdMonthly, want.Metrics.StdMonthly)
		compare(p, label, "monsoon_percentage", got.Metrics.MonsoonPercentage, want.Metrics.MonsoonPercentage)

		if len(got.Flood.Progression) != len(want.Flood.Progression) {
			p.errorf("%s: progression length %d, fixture %d", label, len(got.Flood.Progression), len(want.Flood.Progression))
			continue
		}
		for h := range got.Flood.Progression {
			compare(p, label, fmt.Sprintf("progression[%d]", h), got.Flood.Progression[h], want.Flood.Progression[h])
		}
	}
	return p
}

// validateInvariants checks relationships every report must satisfy.
func validateInvariants(reports []domain.DistrictReport) *phase {
	p := &phase{name: "Assessment invariants"}
	for _, r := range reports {
		label := fmt.Sprintf("%s/%s", r.State, r.District)
		f := r.Flood

		if f.RunoffMM < 0 || f.RunoffMM > f.RainfallMM {
			p.errorf("%s: runoff %.3f outside [0, %.3f]", label, f.RunoffMM, f.RainfallMM)
		}
		compare(p, label, "depth from runoff", f.DepthM, f.RunoffMM/1000*1.5)

		tier, err := hydrology.ClassifyRisk(f.DepthM, f.RainfallMM)
		if err != nil {
			p.errorf("%s: classify: %v", label, err)
		} else if tier.Label() != f.RiskLabel || tier.Code() != f.RiskCode {
			p.errorf("%s: tier %s/%d, recomputed %s/%d", label, f.RiskLabel, f.RiskCode, tier.Label(), tier.Code())
		}

		if len(f.Progression) != f.DurationHours+1 {
			p.errorf("%s: progression length %d for %dh window", label, len(f.Progression), f.DurationHours)
		}
		for h, v := range f.Progression {
			if v < 0 {
				p.errorf("%s: negative water level %.4f at hour %d", label, v, h)
			}
		}

		if r.Metrics.MinMonthly > r.Metrics.AvgMonthly || r.Metrics.AvgMonthly > r.Metrics.MaxMonthly {
			p.errorf("%s: monthly min/avg/max out of order", label)
		}
	}
	return p
}

func compare(p *phase, label, field string, got, want float64) {
	if math.Abs(got-want) > tolerance*math.Max(1, math.Abs(want)) {
		p.errorf("%s: %s %.9g, expected %.9g", label, field, got, want)
	}
}
