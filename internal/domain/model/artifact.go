// Package model loads the trained forest artifact and runs inference on it.
//
// The artifact is produced offline (random forest + standard scaler +
// isotonic calibration table serialized to a single JSON document) and is
// strictly read-only at inference time. Loading validates the structure
// defensively: a malformed artifact is reported as an error and callers fall
// back to a neutral probability rather than failing the scan.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gophishfree/risk-engine/internal/domain/features"
)

var (
	// ErrModelUnavailable indicates no artifact has been loaded
	ErrModelUnavailable = errors.New("model artifact unavailable")

	// ErrMalformedModel indicates the artifact failed structural validation
	ErrMalformedModel = errors.New("malformed model artifact")
)

// NeutralProbability is the fallback returned when no usable model exists.
// A conservative "coin flip" is more useful to callers than refusing to score.
const NeutralProbability = 0.5

// artifactJSON mirrors the trainer's export format
type artifactJSON struct {
	ModelType    string     `json:"model_type"`
	NEstimators  int        `json:"n_estimators"`
	NFeatures    int        `json:"n_features"`
	FeatureNames []string   `json:"feature_names"`
	ScalerMean   []float64  `json:"scaler_mean"`
	ScalerScale  []float64  `json:"scaler_scale"`
	Calibration  *calibJSON `json:"calibration"`
	Trees        []treeJSON `json:"trees"`
}

type calibJSON struct {
	Method  string    `json:"method"`
	XValues []float64 `json:"x_values"`
	YValues []float64 `json:"y_values"`
}

type treeJSON struct {
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Value         [][]float64 `json:"value"`
}

// Tree is an array-indexed binary decision tree. Internal nodes carry a
// feature index and split threshold; leaves are marked by the sentinel child
// index and carry [legitimate, phishing] sample counts.
type Tree struct {
	Feature       []int
	Threshold     []float64
	ChildrenLeft  []int
	ChildrenRight []int
	Value         [][2]float64
}

// leafSentinel marks "no child" in the children arrays (sklearn convention)
const leafSentinel = -1

// NodeCount returns the number of nodes in the tree
func (t *Tree) NodeCount() int {
	return len(t.Feature)
}

// Forest is the immutable trained model: the tree ensemble plus per-feature
// normalization parameters and an optional calibration table. Safe for
// concurrent readers once loaded.
type Forest struct {
	Trees       []Tree
	Scaler      Scaler
	Calibration *CalibrationTable // nil when the artifact carries none
}

// Load reads and validates a model artifact from disk
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrModelUnavailable, path, err)
	}
	return Parse(data)
}

// Parse validates and decodes a serialized model artifact
func Parse(data []byte) (*Forest, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}

	if raw.NFeatures != features.Count {
		return nil, fmt.Errorf("%w: artifact has %d features, schema expects %d",
			ErrMalformedModel, raw.NFeatures, features.Count)
	}
	if len(raw.ScalerMean) != features.Count || len(raw.ScalerScale) != features.Count {
		return nil, fmt.Errorf("%w: scaler arrays have %d/%d entries, expected %d",
			ErrMalformedModel, len(raw.ScalerMean), len(raw.ScalerScale), features.Count)
	}
	if len(raw.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrMalformedModel)
	}
	// Cross-check the exported feature order against the compiled schema so a
	// retrained artifact with reordered columns is rejected instead of
	// silently mis-scored.
	if len(raw.FeatureNames) == features.Count {
		for i, name := range raw.FeatureNames {
			if name != features.Names[i] {
				return nil, fmt.Errorf("%w: feature %d is %q, schema expects %q",
					ErrMalformedModel, i, name, features.Names[i])
			}
		}
	}

	forest := &Forest{
		Trees: make([]Tree, 0, len(raw.Trees)),
		Scaler: Scaler{
			Mean:  raw.ScalerMean,
			Scale: raw.ScalerScale,
		},
	}

	for i, tj := range raw.Trees {
		tree, err := buildTree(tj)
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrMalformedModel, i, err)
		}
		forest.Trees = append(forest.Trees, tree)
	}

	if raw.Calibration != nil && len(raw.Calibration.XValues) > 0 {
		table, err := NewCalibrationTable(raw.Calibration.XValues, raw.Calibration.YValues)
		if err != nil {
			return nil, fmt.Errorf("%w: calibration: %v", ErrMalformedModel, err)
		}
		forest.Calibration = table
	}

	return forest, nil
}

func buildTree(tj treeJSON) (Tree, error) {
	n := len(tj.Feature)
	if n == 0 {
		return Tree{}, errors.New("empty tree")
	}
	if len(tj.Threshold) != n || len(tj.ChildrenLeft) != n || len(tj.ChildrenRight) != n || len(tj.Value) != n {
		return Tree{}, fmt.Errorf("parallel arrays disagree on node count (%d/%d/%d/%d/%d)",
			n, len(tj.Threshold), len(tj.ChildrenLeft), len(tj.ChildrenRight), len(tj.Value))
	}

	tree := Tree{
		Feature:       tj.Feature,
		Threshold:     tj.Threshold,
		ChildrenLeft:  tj.ChildrenLeft,
		ChildrenRight: tj.ChildrenRight,
		Value:         make([][2]float64, n),
	}

	for i, pair := range tj.Value {
		if len(pair) != 2 {
			return Tree{}, fmt.Errorf("node %d has %d class counts, expected 2", i, len(pair))
		}
		tree.Value[i] = [2]float64{pair[0], pair[1]}
	}

	for i := 0; i < n; i++ {
		l, r := tree.ChildrenLeft[i], tree.ChildrenRight[i]
		if (l == leafSentinel) != (r == leafSentinel) {
			return Tree{}, fmt.Errorf("node %d has one sentinel child", i)
		}
		if l != leafSentinel && (l < 0 || l >= n || r < 0 || r >= n) {
			return Tree{}, fmt.Errorf("node %d has out-of-range children %d/%d", i, l, r)
		}
		if l != leafSentinel {
			f := tree.Feature[i]
			if f < 0 || f >= features.Count {
				return Tree{}, fmt.Errorf("node %d splits on out-of-range feature %d", i, f)
			}
		}
	}

	// Probe for cycles up front so corrupt trees surface as a load failure
	// instead of a traversal guard trip during scoring
	if err := tree.checkAcyclic(); err != nil {
		return Tree{}, err
	}

	return tree, nil
}

// checkAcyclic walks every node's subtree with a step budget of the node
// count; exceeding it means the child indices loop back on themselves.
func (t *Tree) checkAcyclic() error {
	n := t.NodeCount()
	visited := make([]bool, n)
	stack := []int{0}
	steps := 0

	for len(stack) > 0 {
		if steps++; steps > n {
			return errors.New("cyclic child indices")
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node] {
			return errors.New("cyclic child indices")
		}
		visited[node] = true
		if t.ChildrenLeft[node] != leafSentinel {
			stack = append(stack, t.ChildrenLeft[node], t.ChildrenRight[node])
		}
	}
	return nil
}
