package hydrology

import (
	"fmt"
	"math"
)

const (
	// peakFraction marks the share of the window spent in the rising phase.
	peakFraction = 0.7

	// DefaultDurationHours is used by Assess when no duration is given.
	DefaultDurationHours = 72

	// MaxDurationHours caps the simulated window at one year of hourly samples.
	MaxDurationHours = 8760
)

// SimulateProgression returns hourly water levels for hours 0..durationHours
// inclusive. The curve peaks at 70% of the window and recedes to zero at the
// end; every sample is jittered by noise and clamped at zero.
func SimulateProgression(rainfallMM float64, durationHours int, noise NoiseSource) ([]float64, error) {
	if err := requireNonNegative("rainfall_mm", rainfallMM); err != nil {
		return nil, err
	}
	if durationHours <= 0 || durationHours > MaxDurationHours {
		return nil, fmt.Errorf("%w: duration_hours must be in 1..%d, got %d", ErrInvalidInput, MaxDurationHours, durationHours)
	}
	if noise == nil {
		return nil, fmt.Errorf("%w: noise source is required", ErrInvalidInput)
	}

	scale := rainfallMM / 100
	levels := make([]float64, 0, durationHours+1)
	for hour := 0; hour <= durationHours; hour++ {
		level := scale * progressionShape(float64(hour)/float64(durationHours))
		level += level * noise.Next()
		levels = append(levels, math.Max(0, level))
	}
	return levels, nil
}

// progressionShape is the unit curve at progress p in [0, 1].
func progressionShape(p float64) float64 {
	if p < peakFraction {
		return math.Pow(p/peakFraction, 1.5)
	}
	recession := (p - peakFraction) / (1 - peakFraction)
	return (1 - recession) * (1 - recession)
}
