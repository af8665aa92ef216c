package regressor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"CupoCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two inputs -> two hidden relu units -> one linear output
func tinyArtifact() Artifact {
	return Artifact{
		InputDim: 2,
		Layers: []LayerSpec{
			{Weights: [][]float64{{1, 0}, {0, -1}}, Bias: []float64{0, 0}, Activation: ActReLU},
			{Weights: [][]float64{{2, 3}}, Bias: []float64{0.5}, Activation: ActIdentity},
		},
	}
}

func TestMLPForward(t *testing.T) {
	m, err := NewMLP(tinyArtifact())
	require.NoError(t, err)
	assert.Equal(t, 2, m.InputDim())

	// hidden = relu([1, -(-2)]) = [1, 2]; out = 2*1 + 3*2 + 0.5
	got, err := m.Predict(context.Background(), []float64{1, -2})
	require.NoError(t, err)
	assert.InDelta(t, 8.5, got, 1e-12)

	// hidden = relu([-1, -3]) = [0, 0]; out = bias
	got, err = m.Predict(context.Background(), []float64{-1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestMLPDoesNotMutateInput(t *testing.T) {
	m, err := NewMLP(tinyArtifact())
	require.NoError(t, err)
	x := []float64{-4, 4}
	_, err = m.Predict(context.Background(), x)
	require.NoError(t, err)
	assert.Equal(t, []float64{-4, 4}, x)
}

func TestMLPInputMismatch(t *testing.T) {
	m, err := NewMLP(tinyArtifact())
	require.NoError(t, err)
	_, err = m.Predict(context.Background(), []float64{1})
	assert.ErrorIs(t, err, models.ErrScalerDimensionMismatch)
}

func TestNewMLPRejectsBadShapes(t *testing.T) {
	cases := map[string]Artifact{
		"no layers": {InputDim: 2},
		"no input":  {Layers: tinyArtifact().Layers},
		"row width": {InputDim: 3, Layers: tinyArtifact().Layers},
		"bias size": {InputDim: 2, Layers: []LayerSpec{{Weights: [][]float64{{1, 1}}, Bias: []float64{1, 2}}}},
		"multi out": {InputDim: 2, Layers: []LayerSpec{{Weights: [][]float64{{1, 1}, {1, 1}}, Bias: []float64{0, 0}}}},
		"bad act":   {InputDim: 2, Layers: []LayerSpec{{Weights: [][]float64{{1, 1}}, Bias: []float64{0}, Activation: "gelu"}}},
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewMLP(a)
			assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
		})
	}
}

func TestLoadMLP(t *testing.T) {
	dir := t.TempDir()
	b, err := json.Marshal(tinyArtifact())
	require.NoError(t, err)
	p := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(p, b, 0o600))

	m, err := LoadMLP(p)
	require.NoError(t, err)
	got, err := m.Predict(context.Background(), []float64{1, -2})
	require.NoError(t, err)
	assert.InDelta(t, 8.5, got, 1e-12)

	_, err = LoadMLP(filepath.Join(dir, "nope.json"))
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
}
