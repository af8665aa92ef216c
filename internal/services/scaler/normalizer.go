package scaler

import (
	"fmt"

	"CupoCast/internal/domain/models"
	domsvc "CupoCast/internal/domain/service"
)

// Normalizer pairs the input (feature vector) and output (amount) transforms.
type Normalizer struct {
	input  domsvc.Scaler
	output domsvc.Scaler
}

// NewNormalizer checks that the output scaler is one-dimensional.
func NewNormalizer(input, output domsvc.Scaler) (*Normalizer, error) {
	if input == nil || output == nil {
		return nil, fmt.Errorf("%w: scalers are required", models.ErrRegressorUnavailable)
	}
	if output.Dim() != 1 {
		return nil, fmt.Errorf("%w: output scaler must be 1-dimensional, got %d", models.ErrScalerDimensionMismatch, output.Dim())
	}
	return &Normalizer{input: input, output: output}, nil
}

// LoadNormalizer reads both scaler artifacts.
func LoadNormalizer(inputPath, outputPath string) (*Normalizer, error) {
	in, err := Load(inputPath)
	if err != nil {
		return nil, err
	}
	out, err := Load(outputPath)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(in, out)
}

// InputDim is the feature vector length expected by the input transform.
func (n *Normalizer) InputDim() int { return n.input.Dim() }

// Features standardizes a flattened window.
func (n *Normalizer) Features(x []float64) ([]float64, error) {
	return n.input.Transform(x)
}

// Amount standardizes a real amount.
func (n *Normalizer) Amount(v float64) (float64, error) {
	z, err := n.output.Transform([]float64{v})
	if err != nil {
		return 0, err
	}
	return z[0], nil
}

// InverseAmount maps a standardized prediction back to money.
func (n *Normalizer) InverseAmount(z float64) (float64, error) {
	v, err := n.output.InverseTransform([]float64{z})
	if err != nil {
		return 0, err
	}
	return v[0], nil
}
