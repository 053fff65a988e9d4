// Package scale maps scalar values between numeric ranges.
package scale

import (
	"errors"
	"math"
)

// ErrDegenerateRange is returned by RemapChecked when the input range is
// empty (inMin == inMax) or the value is NaN.
var ErrDegenerateRange = errors.New("degenerate input range")

// Remap maps x from [inMin, inMax] onto [outMin, outMax].
// Values above inMax map to outMax, values below inMin map to outMin.
// A degenerate input range or a NaN value maps to outMin.
func Remap(x, inMin, inMax, outMin, outMax float64) float64 {
	v, _ := RemapChecked(x, inMin, inMax, outMin, outMax)
	return v
}

// RemapChecked is Remap that also reports ErrDegenerateRange. The returned
// value is always usable.
func RemapChecked(x, inMin, inMax, outMin, outMax float64) (float64, error) {
	if x > inMax {
		return outMax, nil
	}
	if x < inMin {
		return outMin, nil
	}
	if math.IsNaN(x) || inMin == inMax {
		return outMin, ErrDegenerateRange
	}

	// Endpoints are returned exactly so the bar never drifts by a rounding error.
	switch x {
	case inMin:
		return outMin, nil
	case inMax:
		return outMax, nil
	}

	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin), nil
}
