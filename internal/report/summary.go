// Package report aggregates assessed districts into a run summary and
// writes it to JSON, XLSX and the console.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

const (
	// TopDistricts is the length of the highest-rainfall ranking.
	TopDistricts = 5
	// HighRiskAnnualMM is the annual rainfall above which a district is
	// listed as high risk, independent of its modelled tier.
	HighRiskAnnualMM = 3000.0
)

// Stats describes one rainfall series. Std is the population deviation.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

type RainfallStatistics struct {
	Annual  Stats `json:"annual"`
	Monsoon Stats `json:"monsoon"`
}

// DistrictRank is a district entry in a ranked list.
type DistrictRank struct {
	District        string  `json:"district"`
	State           string  `json:"state"`
	AnnualRainfall  float64 `json:"annual_rainfall"`
	MonsoonRainfall float64 `json:"monsoon_rainfall,omitempty"`
	RiskLabel       string  `json:"risk_label,omitempty"`
}

// Summary is the aggregate view of one processing run.
type Summary struct {
	RunID                string             `json:"run_id"`
	GeneratedAt          time.Time          `json:"generated_at"`
	TotalDistricts       int                `json:"total_districts"`
	TotalStates          int                `json:"total_states"`
	States               []string           `json:"states"`
	RainfallStatistics   RainfallStatistics `json:"rainfall_statistics"`
	TopRainfallDistricts []DistrictRank     `json:"top_rainfall_districts"`
	HighRiskDistricts    []DistrictRank     `json:"high_risk_districts"`
	RiskDistribution     map[string]int     `json:"risk_distribution"`
}

// Summarize builds the run summary. An empty input yields zero statistics and
// empty lists.
func Summarize(reports []domain.DistrictReport, generatedAt time.Time) Summary {
	annual := make([]float64, 0, len(reports))
	monsoon := make([]float64, 0, len(reports))
	stateSet := make(map[string]struct{})
	distribution := make(map[string]int, 4)
	for _, tier := range hydrology.RiskTiers() {
		distribution[tier.Label()] = 0
	}

	for _, r := range reports {
		annual = append(annual, r.Annual)
		monsoon = append(monsoon, r.Monsoon)
		stateSet[r.State] = struct{}{}
		if r.Flood.RiskLabel != "" {
			distribution[r.Flood.RiskLabel]++
		}
	}

	states := make([]string, 0, len(stateSet))
	for s := range stateSet {
		states = append(states, s)
	}
	slices.Sort(states)

	return Summary{
		RunID:          uuid.NewString(),
		GeneratedAt:    generatedAt.UTC(),
		TotalDistricts: len(reports),
		TotalStates:    len(states),
		States:         states,
		RainfallStatistics: RainfallStatistics{
			Annual:  describe(annual),
			Monsoon: describe(monsoon),
		},
		TopRainfallDistricts: topDistricts(reports, TopDistricts),
		HighRiskDistricts:    highRiskDistricts(reports, HighRiskAnnualMM),
		RiskDistribution:     distribution,
	}
}

func describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	// stats only fails on empty input.
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	std, _ := stats.StandardDeviationPopulation(values)
	return Stats{Mean: mean, Median: median, Min: minV, Max: maxV, Std: std}
}

// byAnnualDesc orders reports by annual rainfall, highest first, keeping
// input order among equal totals.
func byAnnualDesc(reports []domain.DistrictReport) []domain.DistrictReport {
	sorted := slices.Clone(reports)
	slices.SortStableFunc(sorted, func(a, b domain.DistrictReport) int {
		return cmp.Compare(b.Annual, a.Annual)
	})
	return sorted
}

func topDistricts(reports []domain.DistrictReport, n int) []DistrictRank {
	sorted := byAnnualDesc(reports)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]DistrictRank, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, DistrictRank{
			District:       r.District,
			State:          r.State,
			AnnualRainfall: r.Annual,
			RiskLabel:      r.Flood.RiskLabel,
		})
	}
	return out
}

func highRiskDistricts(reports []domain.DistrictReport, thresholdMM float64) []DistrictRank {
	out := []DistrictRank{}
	for _, r := range byAnnualDesc(reports) {
		if r.Annual <= thresholdMM {
			break
		}
		out = append(out, DistrictRank{
			District:        r.District,
			State:           r.State,
			AnnualRainfall:  r.Annual,
			MonsoonRainfall: r.Monsoon,
			RiskLabel:       r.Flood.RiskLabel,
		})
	}
	return out
}
