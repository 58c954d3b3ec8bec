package model

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrationTable_ClampsToKnotRange(t *testing.T) {
	table, err := NewCalibrationTable(
		[]float64{0.2, 0.5, 0.8},
		[]float64{0.1, 0.5, 0.9},
	)
	require.NoError(t, err)

	assert.Equal(t, 0.1, table.Apply(0.0))
	assert.Equal(t, 0.1, table.Apply(0.2))
	assert.Equal(t, 0.9, table.Apply(0.8))
	assert.Equal(t, 0.9, table.Apply(1.0))
}

func TestCalibrationTable_LinearInterpolation(t *testing.T) {
	table, err := NewCalibrationTable(
		[]float64{0.0, 0.5, 1.0},
		[]float64{0.0, 0.8, 1.0},
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.4, table.Apply(0.25), 1e-9)  // halfway up the first segment
	assert.InDelta(t, 0.9, table.Apply(0.75), 1e-9)  // halfway up the second
	assert.InDelta(t, 0.8, table.Apply(0.5), 1e-9)   // exact knot
	assert.InDelta(t, 0.16, table.Apply(0.1), 1e-9)
}

func TestCalibrationTable_DuplicateKnotX(t *testing.T) {
	// Isotonic regression can emit repeated x values at a step
	table, err := NewCalibrationTable(
		[]float64{0.0, 0.5, 0.5, 1.0},
		[]float64{0.0, 0.3, 0.7, 1.0},
	)
	require.NoError(t, err)

	got := table.Apply(0.5)
	assert.GreaterOrEqual(t, got, 0.3)
	assert.LessOrEqual(t, got, 0.7)
}

func TestCalibrationTable_Monotonicity(t *testing.T) {
	// Random monotone table; random probe points. For any a <= b the
	// calibrated values must preserve order.
	rng := rand.New(rand.NewSource(7))

	xs := make([]float64, 20)
	ys := make([]float64, 20)
	for i := range xs {
		xs[i] = rng.Float64()
		ys[i] = rng.Float64()
	}
	sort.Float64s(xs)
	sort.Float64s(ys)

	table, err := NewCalibrationTable(xs, ys)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		a, b := rng.Float64(), rng.Float64()
		if a > b {
			a, b = b, a
		}
		assert.LessOrEqual(t, table.Apply(a), table.Apply(b),
			"calibration inverted order for %f <= %f", a, b)
	}
}

func TestCalibrationTable_OutputInUnitInterval(t *testing.T) {
	table, err := NewCalibrationTable(
		[]float64{0.1, 0.9},
		[]float64{0.0, 1.0},
	)
	require.NoError(t, err)

	for _, raw := range []float64{-5, 0, 0.1, 0.42, 0.9, 1, 5} {
		got := table.Apply(raw)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestNewCalibrationTable_Validation(t *testing.T) {
	_, err := NewCalibrationTable(nil, nil)
	assert.Error(t, err, "empty table")

	_, err = NewCalibrationTable([]float64{0, 1}, []float64{0})
	assert.Error(t, err, "length mismatch")

	_, err = NewCalibrationTable([]float64{0.5, 0.2}, []float64{0, 1})
	assert.Error(t, err, "decreasing x")

	_, err = NewCalibrationTable([]float64{0, 1}, []float64{0, 1.5})
	assert.Error(t, err, "y outside unit interval")
}
