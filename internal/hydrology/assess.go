package hydrology

import "fmt"

// SimulationInput describes one rainfall scenario. Zero CatchmentAreaKm2 and
// DurationHours select the defaults (100 km², 72 h).
type SimulationInput struct {
	RainfallMM       float64   `json:"rainfall_mm" yaml:"rainfall_mm"`
	SoilClass        SoilClass `json:"soil_class" yaml:"soil_class"`
	CatchmentAreaKm2 float64   `json:"catchment_area_km2,omitempty" yaml:"catchment_area_km2"`
	DurationHours    int       `json:"duration_hours,omitempty" yaml:"duration_hours"`
}

// Assessment is the combined output of the model chain for one scenario.
type Assessment struct {
	RainfallMM       float64   `json:"rainfall_mm"`
	SoilClass        SoilClass `json:"soil_class"`
	CurveNumber      float64   `json:"curve_number"`
	CatchmentAreaKm2 float64   `json:"catchment_area_km2"`
	RunoffMM         float64   `json:"runoff_mm"`
	VolumeM3         float64   `json:"volume_m3"`
	DepthM           float64   `json:"depth_m"`
	RiskLabel        string    `json:"risk_label"`
	RiskCode         int       `json:"risk_code"`
	DurationHours    int       `json:"duration_hours"`
	Progression      []float64 `json:"progression"`
}

// Tier returns the assessment's risk tier.
func (a Assessment) Tier() RiskTier { return RiskTier(a.RiskCode) }

// WithDefaults fills unset area and duration.
func (in SimulationInput) WithDefaults() SimulationInput {
	if in.CatchmentAreaKm2 == 0 {
		in.CatchmentAreaKm2 = DefaultCatchmentAreaKm2
	}
	if in.DurationHours == 0 {
		in.DurationHours = DefaultDurationHours
	}
	return in
}

// Assess runs runoff, water level, risk classification and progression for
// one scenario.
func Assess(in SimulationInput, noise NoiseSource) (Assessment, error) {
	in = in.WithDefaults()

	runoff, err := EstimateRunoff(in.RainfallMM, in.SoilClass)
	if err != nil {
		return Assessment{}, fmt.Errorf("estimate runoff: %w", err)
	}
	depth, err := EstimateWaterLevel(runoff, in.CatchmentAreaKm2)
	if err != nil {
		return Assessment{}, fmt.Errorf("estimate water level: %w", err)
	}
	volume, err := RunoffVolume(runoff, in.CatchmentAreaKm2)
	if err != nil {
		return Assessment{}, fmt.Errorf("runoff volume: %w", err)
	}
	tier, err := ClassifyRisk(depth, in.RainfallMM)
	if err != nil {
		return Assessment{}, fmt.Errorf("classify risk: %w", err)
	}
	series, err := SimulateProgression(in.RainfallMM, in.DurationHours, noise)
	if err != nil {
		return Assessment{}, fmt.Errorf("simulate progression: %w", err)
	}

	return Assessment{
		RainfallMM:       in.RainfallMM,
		SoilClass:        in.SoilClass,
		CurveNumber:      in.SoilClass.CurveNumber(),
		CatchmentAreaKm2: in.CatchmentAreaKm2,
		RunoffMM:         runoff,
		VolumeM3:         volume,
		DepthM:           depth,
		RiskLabel:        tier.Label(),
		RiskCode:         tier.Code(),
		DurationHours:    in.DurationHours,
		Progression:      series,
	}, nil
}
