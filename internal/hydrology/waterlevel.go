package hydrology

import (
	"fmt"
	"math"
)

const (
	// terrainFactor scales flat average depth to account for water pooling in
	// concave terrain.
	terrainFactor = 1.5

	// DefaultCatchmentAreaKm2 is used by Assess when no area is given.
	DefaultCatchmentAreaKm2 = 100.0
)

// EstimateWaterLevel converts runoff (mm) to an average water depth (m).
//
// The catchment area is validated but does not influence the returned depth.
// It is kept in the signature for a future area-weighted model; see
// RunoffVolume for the only area-dependent quantity.
func EstimateWaterLevel(runoffMM, catchmentAreaKm2 float64) (float64, error) {
	if err := validateRunoffAndArea(runoffMM, catchmentAreaKm2); err != nil {
		return 0, err
	}
	return runoffMM / 1000 * terrainFactor, nil
}

// RunoffVolume returns the runoff volume in cubic metres over the catchment.
// 1 mm over 1 km² is 1000 m³.
func RunoffVolume(runoffMM, catchmentAreaKm2 float64) (float64, error) {
	if err := validateRunoffAndArea(runoffMM, catchmentAreaKm2); err != nil {
		return 0, err
	}
	return runoffMM * catchmentAreaKm2 * 1000, nil
}

func validateRunoffAndArea(runoffMM, catchmentAreaKm2 float64) error {
	if err := requireNonNegative("runoff_mm", runoffMM); err != nil {
		return err
	}
	if !(catchmentAreaKm2 > 0) || math.IsInf(catchmentAreaKm2, 0) {
		return fmt.Errorf("%w: catchment_area_km2 must be positive and finite, got %g", ErrInvalidInput, catchmentAreaKm2)
	}
	return nil
}
