// Package scaler applies the standardization fitted offline alongside the
// regressor. Artifacts are JSON exports of a standard scaler (mean and scale
// per input column).
package scaler

import (
	"encoding/json"
	"fmt"
	"os"

	"CupoCast/internal/domain/models"
	domsvc "CupoCast/internal/domain/service"
)

// StandardScaler computes (x - mean) / scale per column.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

type artifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// New builds a scaler from fitted parameters. A zero scale is treated as 1,
// matching how constant columns are fitted.
func New(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("%w: empty scaler", models.ErrRegressorUnavailable)
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: mean has %d columns, scale has %d", models.ErrRegressorUnavailable, len(mean), len(scale))
	}
	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

// Load reads a scaler artifact from disk.
func Load(path string) (*StandardScaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read scaler %s: %v", models.ErrRegressorUnavailable, path, err)
	}
	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("%w: parse scaler %s: %v", models.ErrRegressorUnavailable, path, err)
	}
	return New(a.Mean, a.Scale)
}

// Dim is the fitted dimensionality.
func (s *StandardScaler) Dim() int { return len(s.mean) }

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if err := s.check(x); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

func (s *StandardScaler) InverseTransform(z []float64) ([]float64, error) {
	if err := s.check(z); err != nil {
		return nil, err
	}
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = v*s.scale[i] + s.mean[i]
	}
	return out, nil
}

func (s *StandardScaler) check(v []float64) error {
	if len(v) != len(s.mean) {
		return fmt.Errorf("%w: got %d values, scaler fitted on %d", models.ErrScalerDimensionMismatch, len(v), len(s.mean))
	}
	return nil
}

var _ domsvc.Scaler = (*StandardScaler)(nil)
