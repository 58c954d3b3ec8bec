package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaler_Transform(t *testing.T) {
	s := Scaler{
		Mean:  []float64{10, 0, 5},
		Scale: []float64{2, 1, 5},
	}

	out := s.Transform([]float64{14, -3, 5})
	assert.Equal(t, []float64{2, -3, 0}, out)
}

func TestScaler_ZeroScaleYieldsNeutralValue(t *testing.T) {
	// A feature constant at training time exports scale 0 (or epsilon);
	// normalization must not produce Inf, just a 0 contribution
	s := Scaler{
		Mean:  []float64{100, 0},
		Scale: []float64{0, 1e-15},
	}

	out := s.Transform([]float64{42, 7})
	assert.Equal(t, 0.0, out[0])
	assert.Equal(t, 0.0, out[1])
}

func TestScaler_DoesNotMutateInput(t *testing.T) {
	s := Scaler{Mean: []float64{1}, Scale: []float64{2}}
	in := []float64{5}
	_ = s.Transform(in)
	assert.Equal(t, 5.0, in[0])
}
