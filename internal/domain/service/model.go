package service

import "context"

// Regressor is a trained single-step predictor. Implementations are immutable
// after loading and safe for concurrent use.
type Regressor interface {
	// Predict maps a standardized feature vector to a standardized scalar.
	Predict(ctx context.Context, x []float64) (float64, error)
	// InputDim is the vector length the regressor was trained on.
	InputDim() int
}

// Scaler is a fitted linear standardization and its inverse.
type Scaler interface {
	Transform(x []float64) ([]float64, error)
	InverseTransform(z []float64) ([]float64, error)
	Dim() int
}
