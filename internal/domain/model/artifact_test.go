package model

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gophishfree/risk-engine/internal/domain/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArtifact builds a minimal valid artifact document that tests can
// mutate before serialization
func testArtifact() map[string]interface{} {
	mean := make([]float64, features.Count)
	scale := make([]float64, features.Count)
	for i := range scale {
		scale[i] = 1.0
	}

	// Single tree: split on NoHttps (slot 14); left leaf mostly legitimate,
	// right leaf mostly phishing
	tree := map[string]interface{}{
		"feature":        []int{14, -2, -2},
		"threshold":      []float64{0.5, -2, -2},
		"children_left":  []int{1, -1, -1},
		"children_right": []int{2, -1, -1},
		"value":          [][]float64{{50, 50}, {90, 10}, {5, 95}},
	}

	return map[string]interface{}{
		"model_type":    "unified_random_forest",
		"n_estimators":  1,
		"n_features":    features.Count,
		"feature_names": features.Names[:],
		"scaler_mean":   mean,
		"scaler_scale":  scale,
		"calibration": map[string]interface{}{
			"method":   "isotonic",
			"x_values": []float64{0.0, 0.5, 1.0},
			"y_values": []float64{0.0, 0.5, 1.0},
		},
		"trees": []interface{}{tree},
	}
}

func marshalArtifact(t *testing.T, doc map[string]interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func TestParse_ValidArtifact(t *testing.T) {
	forest, err := Parse(marshalArtifact(t, testArtifact()))
	require.NoError(t, err)

	assert.Len(t, forest.Trees, 1)
	assert.Equal(t, 3, forest.Trees[0].NodeCount())
	assert.NotNil(t, forest.Calibration)
	assert.Len(t, forest.Scaler.Mean, features.Count)
}

func TestParse_MalformedArtifacts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]interface{})
	}{
		{
			name: "wrong feature count",
			mutate: func(doc map[string]interface{}) {
				doc["n_features"] = 32
			},
		},
		{
			name: "short scaler arrays",
			mutate: func(doc map[string]interface{}) {
				doc["scaler_mean"] = []float64{0, 1, 2}
			},
		},
		{
			name: "no trees",
			mutate: func(doc map[string]interface{}) {
				doc["trees"] = []interface{}{}
			},
		},
		{
			name: "reordered feature names",
			mutate: func(doc map[string]interface{}) {
				names := append([]string{}, features.Names[:]...)
				names[0], names[1] = names[1], names[0]
				doc["feature_names"] = names
			},
		},
		{
			name: "parallel array length mismatch",
			mutate: func(doc map[string]interface{}) {
				tree := doc["trees"].([]interface{})[0].(map[string]interface{})
				tree["threshold"] = []float64{0.5}
			},
		},
		{
			name: "one-sided sentinel",
			mutate: func(doc map[string]interface{}) {
				tree := doc["trees"].([]interface{})[0].(map[string]interface{})
				tree["children_left"] = []int{1, -1, -1}
				tree["children_right"] = []int{-1, -1, -1}
			},
		},
		{
			name: "out of range child index",
			mutate: func(doc map[string]interface{}) {
				tree := doc["trees"].([]interface{})[0].(map[string]interface{})
				tree["children_right"] = []int{7, -1, -1}
			},
		},
		{
			name: "cyclic child indices",
			mutate: func(doc map[string]interface{}) {
				tree := doc["trees"].([]interface{})[0].(map[string]interface{})
				tree["feature"] = []int{14, 14, -2}
				tree["threshold"] = []float64{0.5, 0.5, -2}
				tree["children_left"] = []int{1, 0, -1}
				tree["children_right"] = []int{2, 2, -1}
			},
		},
		{
			name: "split on out-of-range feature",
			mutate: func(doc map[string]interface{}) {
				tree := doc["trees"].([]interface{})[0].(map[string]interface{})
				tree["feature"] = []int{99, -2, -2}
			},
		},
		{
			name: "decreasing calibration knots",
			mutate: func(doc map[string]interface{}) {
				doc["calibration"] = map[string]interface{}{
					"method":   "isotonic",
					"x_values": []float64{0.5, 0.2, 1.0},
					"y_values": []float64{0.0, 0.5, 1.0},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testArtifact()
			tt.mutate(doc)
			_, err := Parse(marshalArtifact(t, doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedModel)
		})
	}
}

func TestParse_MissingCalibrationIsNotAnError(t *testing.T) {
	doc := testArtifact()
	delete(doc, "calibration")

	forest, err := Parse(marshalArtifact(t, doc))
	require.NoError(t, err)
	assert.Nil(t, forest.Calibration)

	// Degrades to passthrough: calibrated equals raw exactly
	for _, raw := range []float64{0, 0.25, 0.5, 0.99} {
		assert.Equal(t, raw, forest.Calibrate(raw))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(fmt.Sprintf("%s/nope.json", t.TempDir()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
