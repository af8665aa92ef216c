// Package regressor evaluates the trained single-step capacity model.
package regressor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"CupoCast/internal/domain/models"
	domsvc "CupoCast/internal/domain/service"

	"gonum.org/v1/gonum/mat"
)

// Activation names accepted in artifacts.
const (
	ActReLU     = "relu"
	ActIdentity = "identity"
	ActTanh     = "tanh"
	ActSigmoid  = "sigmoid"
)

// LayerSpec is one dense layer as exported by the training job.
// Weights are laid out [out][in].
type LayerSpec struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// Artifact is the on-disk model format.
type Artifact struct {
	InputDim int         `json:"input_dim"`
	Layers   []LayerSpec `json:"layers"`
}

type layer struct {
	w   *mat.Dense
	b   *mat.VecDense
	act func(float64) float64
}

// MLP is a feed-forward network. It is read-only after construction.
type MLP struct {
	inputDim int
	layers   []layer
}

// LoadMLP reads a model artifact from disk.
func LoadMLP(path string) (*MLP, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model %s: %v", models.ErrRegressorUnavailable, path, err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("%w: parse model %s: %v", models.ErrRegressorUnavailable, path, err)
	}
	return NewMLP(a)
}

// NewMLP validates layer shapes and builds the network.
func NewMLP(a Artifact) (*MLP, error) {
	if a.InputDim <= 0 {
		return nil, fmt.Errorf("%w: input_dim must be > 0", models.ErrRegressorUnavailable)
	}
	if len(a.Layers) == 0 {
		return nil, fmt.Errorf("%w: model has no layers", models.ErrRegressorUnavailable)
	}
	m := &MLP{inputDim: a.InputDim, layers: make([]layer, 0, len(a.Layers))}
	in := a.InputDim
	for i, ls := range a.Layers {
		out := len(ls.Weights)
		if out == 0 || len(ls.Bias) != out {
			return nil, fmt.Errorf("%w: layer %d has %d rows and %d biases", models.ErrRegressorUnavailable, i, out, len(ls.Bias))
		}
		data := make([]float64, 0, out*in)
		for r, row := range ls.Weights {
			if len(row) != in {
				return nil, fmt.Errorf("%w: layer %d row %d has %d weights, want %d", models.ErrRegressorUnavailable, i, r, len(row), in)
			}
			data = append(data, row...)
		}
		act, err := activation(ls.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", models.ErrRegressorUnavailable, i, err)
		}
		m.layers = append(m.layers, layer{
			w:   mat.NewDense(out, in, data),
			b:   mat.NewVecDense(out, append([]float64(nil), ls.Bias...)),
			act: act,
		})
		in = out
	}
	if in != 1 {
		return nil, fmt.Errorf("%w: output layer has %d units, want 1", models.ErrRegressorUnavailable, in)
	}
	return m, nil
}

func (m *MLP) InputDim() int { return m.inputDim }

// Predict runs a forward pass. ctx is unused; evaluation is CPU-bound and short.
func (m *MLP) Predict(_ context.Context, x []float64) (float64, error) {
	if len(x) != m.inputDim {
		return 0, fmt.Errorf("%w: model expects %d features, got %d", models.ErrScalerDimensionMismatch, m.inputDim, len(x))
	}
	h := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for _, l := range m.layers {
		rows, _ := l.w.Dims()
		next := mat.NewVecDense(rows, nil)
		next.MulVec(l.w, h)
		next.AddVec(next, l.b)
		raw := next.RawVector().Data
		for i := range raw {
			raw[i] = l.act(raw[i])
		}
		h = next
	}
	out := h.AtVec(0)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("model produced non-finite output")
	}
	return out, nil
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case ActReLU:
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case ActIdentity, "", "linear":
		return func(v float64) float64 { return v }, nil
	case ActTanh:
		return math.Tanh, nil
	case ActSigmoid:
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

var _ domsvc.Regressor = (*MLP)(nil)
