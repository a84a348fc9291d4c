package domain

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

// RainfallBasis selects which rainfall total drives the flood assessment.
type RainfallBasis string

const (
	BasisMonsoon RainfallBasis = "monsoon"
	BasisAnnual  RainfallBasis = "annual"
)

// ParseRainfallBasis accepts "monsoon" or "annual" in any case.
func ParseRainfallBasis(s string) (RainfallBasis, error) {
	switch b := RainfallBasis(strings.ToLower(strings.TrimSpace(s))); b {
	case BasisMonsoon, BasisAnnual:
		return b, nil
	default:
		return "", fmt.Errorf("unknown rainfall basis %q", s)
	}
}

// Rainfall returns the record's total for the basis.
func (b RainfallBasis) Rainfall(rec DistrictRecord) float64 {
	if b == BasisAnnual {
		return rec.Annual
	}
	return rec.Monsoon
}

// FloodParams are the scenario settings applied to every district.
type FloodParams struct {
	Basis            RainfallBasis
	SoilClass        hydrology.SoilClass
	CatchmentAreaKm2 float64
	DurationHours    int
}

// AssessFlood runs the hydrology model chain on the district's rainfall total.
func AssessFlood(report DistrictReport, params FloodParams, noise hydrology.NoiseSource) (DistrictReport, error) {
	basis := params.Basis
	if basis == "" {
		basis = BasisMonsoon
	}

	assessment, err := hydrology.Assess(hydrology.SimulationInput{
		RainfallMM:       basis.Rainfall(report.DistrictRecord),
		SoilClass:        params.SoilClass,
		CatchmentAreaKm2: params.CatchmentAreaKm2,
		DurationHours:    params.DurationHours,
	}, noise)
	if err != nil {
		return report, fmt.Errorf("assess district %s: %w", report.ID, err)
	}

	report.RainfallBasis = basis
	report.Flood = assessment
	return report, nil
}
