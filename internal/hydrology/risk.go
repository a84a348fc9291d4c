package hydrology

// RiskTier is an ordered flood-severity class. Higher values are more severe.
type RiskTier int

const (
	RiskLow RiskTier = iota + 1
	RiskMedium
	RiskHigh
	RiskExtreme
)

// riskThresholds are checked in descending severity; the first tier whose
// depth or rainfall threshold is exceeded wins.
var riskThresholds = []struct {
	tier       RiskTier
	depthM     float64
	rainfallMM float64
}{
	{RiskExtreme, 4.0, 500},
	{RiskHigh, 2.5, 350},
	{RiskMedium, 1.5, 200},
}

// ClassifyRisk derives a risk tier from water depth (m) and rainfall (mm).
// Either signal alone can raise the tier.
func ClassifyRisk(depthM, rainfallMM float64) (RiskTier, error) {
	if err := requireNonNegative("depth_m", depthM); err != nil {
		return 0, err
	}
	if err := requireNonNegative("rainfall_mm", rainfallMM); err != nil {
		return 0, err
	}

	for _, t := range riskThresholds {
		if depthM > t.depthM || rainfallMM > t.rainfallMM {
			return t.tier, nil
		}
	}
	return RiskLow, nil
}

// Label returns the upper-case tier name used in serialized output.
func (t RiskTier) Label() string {
	switch t {
	case RiskExtreme:
		return "EXTREME"
	case RiskHigh:
		return "HIGH"
	case RiskMedium:
		return "MEDIUM"
	case RiskLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Code returns the numeric tier, 1 (low) through 4 (extreme).
func (t RiskTier) Code() int { return int(t) }

func (t RiskTier) String() string { return t.Label() }

// RiskTiers lists every tier from least to most severe.
func RiskTiers() []RiskTier {
	return []RiskTier{RiskLow, RiskMedium, RiskHigh, RiskExtreme}
}
