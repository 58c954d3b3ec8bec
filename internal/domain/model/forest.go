package model

// Predict returns the ensemble's soft-vote phishing probability for a
// normalized feature vector.
//
// Each tree is walked iteratively from the root: value <= threshold goes
// left, otherwise right, until the leaf sentinel. The leaf contributes
// phishing / (phishing + legitimate); an empty leaf contributes 0. The
// ensemble probability is the arithmetic mean of the per-tree leaf
// probabilities — soft voting, not a majority vote of binarized labels, so a
// few highly confident trees can outweigh many weakly confident ones.
//
// Traversal carries a step budget of the tree's node count. Load-time
// validation already rejects cyclic trees, so the guard tripping here means
// the forest was mutated after load; the tree is skipped as a zero vote.
func (f *Forest) Predict(normalized []float64) float64 {
	if len(f.Trees) == 0 {
		return NeutralProbability
	}

	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].leafProbability(normalized)
	}
	return sum / float64(len(f.Trees))
}

// PredictCalibrated runs inference and maps the raw probability through the
// calibration table when one is present
func (f *Forest) PredictCalibrated(normalized []float64) float64 {
	return f.Calibrate(f.Predict(normalized))
}

// Calibrate maps a raw ensemble probability through the isotonic table.
// Without a table the raw probability passes through unchanged.
func (f *Forest) Calibrate(raw float64) float64 {
	if f.Calibration == nil {
		return raw
	}
	return f.Calibration.Apply(raw)
}

func (t *Tree) leafProbability(vec []float64) float64 {
	node := 0
	for steps := 0; steps <= t.NodeCount(); steps++ {
		if t.ChildrenLeft[node] == leafSentinel {
			legit, phish := t.Value[node][0], t.Value[node][1]
			total := legit + phish
			if total <= 0 {
				return 0
			}
			return phish / total
		}

		featureIdx := t.Feature[node]
		var v float64
		if featureIdx >= 0 && featureIdx < len(vec) {
			v = vec[featureIdx]
		}
		if v <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}

	// Step budget exhausted: corrupt tree, neutral-zero vote
	return 0
}
