package model

import "math"

// Scaler holds the per-feature z-score parameters from training
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// scale values this close to zero are treated as degenerate: the feature was
// constant at training time, so its normalized contribution is defined as 0
const minScale = 1e-12

// Transform applies (raw[i] - mean[i]) / scale[i] per slot. The input is not
// mutated. A degenerate (near-zero) scale yields a neutral 0 instead of an
// Inf/NaN that would poison every downstream tree split.
func (s Scaler) Transform(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		if i >= len(s.Mean) || i >= len(s.Scale) {
			break
		}
		sc := s.Scale[i]
		if math.Abs(sc) < minScale {
			out[i] = 0
			continue
		}
		out[i] = (v - s.Mean[i]) / sc
	}
	return out
}
