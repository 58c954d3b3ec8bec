package model

import (
	"errors"
	"fmt"
	"sort"
)

// CalibrationTable is a monotonic piecewise-linear mapping from the forest's
// raw probability to an observed-frequency-calibrated probability, produced
// by isotonic regression at training time.
type CalibrationTable struct {
	x []float64 // raw probabilities, non-decreasing
	y []float64 // calibrated probabilities, each in [0,1]
}

// NewCalibrationTable validates the knot arrays from the artifact
func NewCalibrationTable(x, y []float64) (*CalibrationTable, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("knot arrays have %d/%d entries", len(x), len(y))
	}
	for i := range x {
		if i > 0 && x[i] < x[i-1] {
			return nil, errors.New("x values must be non-decreasing")
		}
		if y[i] < 0 || y[i] > 1 {
			return nil, fmt.Errorf("calibrated value %f at knot %d outside [0,1]", y[i], i)
		}
	}
	return &CalibrationTable{x: x, y: y}, nil
}

// Apply maps a raw probability through the table. Inputs outside the knot
// range clamp to the boundary values; inside, the bracketing knots are found
// by binary search and linearly interpolated. The mapping is deterministic
// and order-preserving: raw a <= b always calibrates to Apply(a) <= Apply(b).
func (c *CalibrationTable) Apply(raw float64) float64 {
	n := len(c.x)
	if raw <= c.x[0] {
		return c.y[0]
	}
	if raw >= c.x[n-1] {
		return c.y[n-1]
	}

	// First knot with x >= raw; the bracket is [hi-1, hi]
	hi := sort.SearchFloat64s(c.x, raw)
	lo := hi - 1

	dx := c.x[hi] - c.x[lo]
	if dx == 0 {
		// Duplicate knot x values: take the upper knot
		return c.y[hi]
	}
	frac := (raw - c.x[lo]) / dx
	return c.y[lo] + frac*(c.y[hi]-c.y[lo])
}

// Len returns the number of knots
func (c *CalibrationTable) Len() int {
	return len(c.x)
}
