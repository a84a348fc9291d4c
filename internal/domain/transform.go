package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// ErrMissingColumns is returned when a dataset lacks required columns.
var ErrMissingColumns = errors.New("missing required columns")

// RequiredColumns returns the columns every dataset must provide, in
// dataset order.
func RequiredColumns() []string {
	cols := make([]string, 0, len(Months)+3)
	cols = append(cols, ColumnState, ColumnDistrict)
	for _, m := range Months {
		cols = append(cols, m.Column)
	}
	return append(cols, ColumnAnnual)
}

// ValidateColumns checks a header row and reports every missing column.
func ValidateColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// ParseRawEvent deserializes a source-topic message into a DistrictRecord.
func ParseRawEvent(raw RawEvent) (DistrictRecord, error) {
	var row RawRainfallRow
	if err := json.Unmarshal(raw.Value, &row); err != nil {
		return DistrictRecord{}, fmt.Errorf("parse raw row: %w", err)
	}
	return ParseRow(row)
}

// ParseRow converts a raw row into a DistrictRecord.
func ParseRow(row RawRainfallRow) (DistrictRecord, error) {
	rec := DistrictRecord{
		State:    strings.TrimSpace(row[ColumnState]),
		District: strings.TrimSpace(row[ColumnDistrict]),
		Monthly:  make(map[string]float64, len(Months)),
	}
	if rec.State == "" || rec.District == "" {
		return DistrictRecord{}, fmt.Errorf("parse row: %s and %s are required", ColumnState, ColumnDistrict)
	}

	for _, m := range Months {
		v, err := parseRainfall(row, m.Column)
		if err != nil {
			return DistrictRecord{}, err
		}
		rec.Monthly[m.Name] = v
	}

	var err error
	if rec.Annual, err = parseRainfall(row, ColumnAnnual); err != nil {
		return DistrictRecord{}, err
	}
	if rec.Monsoon, err = parseRainfall(row, ColumnMonsoon); err != nil {
		return DistrictRecord{}, err
	}
	return rec, nil
}

// parseRainfall reads a non-negative millimetre value. Absent and blank cells
// read as 0.
func parseRainfall(row RawRainfallRow, column string) (float64, error) {
	s := strings.TrimSpace(row[column])
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse row: column %s: %w", column, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse row: column %s: non-finite rainfall %q", column, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("parse row: column %s: negative rainfall %g", column, v)
	}
	return v, nil
}

// generateID produces a deterministic ID from the district's key fields.
func generateID(state, district string) string {
	input := strings.ToUpper(state) + "|" + strings.ToUpper(district)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}

// EnrichDistrict assigns the district ID, computes descriptive metrics and
// stamps the processing time. Flood assessment is a separate step; see
// AssessFlood.
func EnrichDistrict(rec DistrictRecord) DistrictReport {
	return DistrictReport{
		ID:             generateID(rec.State, rec.District),
		DistrictRecord: rec,
		Metrics:        CalculateMetrics(rec),
		ProcessedAt:    clock.Now(),
	}
}

// CalculateMetrics derives descriptive statistics from the monthly normals.
func CalculateMetrics(rec DistrictRecord) DistrictMetrics {
	values := make([]float64, 0, len(Months))
	peak := ""
	peakValue := 0.0
	for _, m := range Months {
		v := rec.Monthly[m.Name]
		values = append(values, v)
		if peak == "" || v > peakValue {
			peak, peakValue = m.Name, v
		}
	}

	// stats only fails on empty input, and values always holds twelve months.
	mean, _ := stats.Mean(values)
	maxV, _ := stats.Max(values)
	minV, _ := stats.Min(values)
	std, _ := stats.StandardDeviationPopulation(values)

	return DistrictMetrics{
		AvgMonthly:        mean,
		MaxMonthly:        maxV,
		MinMonthly:        minV,
		StdMonthly:        std,
		MonsoonPercentage: MonsoonPercentage(rec.Monsoon, rec.Annual),
		PeakMonth:         peak,
	}
}

// MonsoonPercentage returns monsoon as a percentage of annual, or 0 when the
// annual total is not positive.
func MonsoonPercentage(monsoon, annual float64) float64 {
	if annual <= 0 {
		return 0
	}
	return monsoon / annual * 100
}
