package hydrology

import (
	"fmt"
	"strings"
)

// SoilClass describes how readily a surface generates runoff. High means low
// infiltration (clay, urban cover); Low means high infiltration (sandy soil).
type SoilClass int

// SoilMedium is the zero value so an unset class behaves like the default.
const (
	SoilMedium SoilClass = iota
	SoilHigh
	SoilLow
)

const (
	curveNumberHigh   = 85
	curveNumberMedium = 70
	curveNumberLow    = 55
)

// ParseSoilClass maps "high", "medium" or "low" (any case, surrounding
// whitespace ignored) to a SoilClass. Anything else resolves to SoilMedium.
func ParseSoilClass(s string) SoilClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SoilHigh
	case "low":
		return SoilLow
	default:
		return SoilMedium
	}
}

// CurveNumber returns the SCS curve number for the class. Values outside the
// enumeration fall back to the medium curve number.
func (c SoilClass) CurveNumber() float64 {
	switch c {
	case SoilHigh:
		return curveNumberHigh
	case SoilLow:
		return curveNumberLow
	case SoilMedium:
		return curveNumberMedium
	default:
		return curveNumberMedium
	}
}

func (c SoilClass) String() string {
	switch c {
	case SoilHigh:
		return "high"
	case SoilLow:
		return "low"
	default:
		return "medium"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c SoilClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown text decodes to
// SoilMedium rather than failing.
func (c *SoilClass) UnmarshalText(text []byte) error {
	if c == nil {
		return fmt.Errorf("unmarshal soil class: nil receiver")
	}
	*c = ParseSoilClass(string(text))
	return nil
}
