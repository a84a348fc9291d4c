package hydrology

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every validation failure in this package.
var ErrInvalidInput = errors.New("invalid input")

// requireNonNegative rejects negative, NaN and infinite values.
func requireNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %g", ErrInvalidInput, name, v)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidInput, name, v)
	}
	return nil
}
