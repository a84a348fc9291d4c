package hydrology

// Retention returns the potential maximum retention S and the initial
// abstraction Ia, both in millimetres, for a soil class.
func Retention(soil SoilClass) (s, ia float64) {
	s = 25400/soil.CurveNumber() - 254
	return s, 0.2 * s
}

// EstimateRunoff converts a rainfall depth into surface runoff (mm) using the
// SCS Curve Number method. Rainfall at or below the initial abstraction
// produces no runoff.
func EstimateRunoff(rainfallMM float64, soil SoilClass) (float64, error) {
	if err := requireNonNegative("rainfall_mm", rainfallMM); err != nil {
		return 0, err
	}

	s, ia := Retention(soil)
	if rainfallMM <= ia {
		return 0, nil
	}

	excess := rainfallMM - ia
	return excess * excess / (excess + s), nil
}
