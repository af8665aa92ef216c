// Package forecast produces multi-month capacity projections by feeding each
// single-step prediction back into the history window.
package forecast

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"CupoCast/internal/domain/models"
	domsvc "CupoCast/internal/domain/service"
	"CupoCast/internal/services/features"
	"CupoCast/pkg/util"

	"github.com/shopspring/decimal"
)

// DefaultMaxHorizon bounds the number of months a single request may project.
const DefaultMaxHorizon = 36

// Normalizer is the pair of fitted transforms around the regressor.
type Normalizer interface {
	InputDim() int
	Features(x []float64) ([]float64, error)
	InverseAmount(z float64) (float64, error)
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithMaxHorizon overrides DefaultMaxHorizon. Non-positive values are ignored.
func WithMaxHorizon(n int) Option {
	return func(f *Forecaster) {
		if n > 0 {
			f.maxHorizon = n
		}
	}
}

// Forecaster is stateless between calls and safe for concurrent use as long
// as its regressor is.
type Forecaster struct {
	regressor  domsvc.Regressor
	normalizer Normalizer
	maxHorizon int
}

// New checks that the regressor and normalizer agree on the window vector size.
func New(reg domsvc.Regressor, norm Normalizer, opts ...Option) (*Forecaster, error) {
	if reg == nil || norm == nil {
		return nil, fmt.Errorf("%w: regressor and normalizer are required", models.ErrRegressorUnavailable)
	}
	if reg.InputDim() != features.VectorSize || norm.InputDim() != features.VectorSize {
		return nil, fmt.Errorf("%w: regressor takes %d, scaler takes %d, window yields %d",
			models.ErrScalerDimensionMismatch, reg.InputDim(), norm.InputDim(), features.VectorSize)
	}
	f := &Forecaster{regressor: reg, normalizer: norm, maxHorizon: DefaultMaxHorizon}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Forecaster) MaxHorizon() int { return f.maxHorizon }

// Forecast projects `horizon` months starting at currentMonth (1..12).
// Inputs are validated before the regressor is consulted.
func (f *Forecaster) Forecast(ctx context.Context, window features.Window, horizon, currentMonth int) (models.Projection, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if horizon <= 0 || horizon > f.maxHorizon {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", models.ErrInvalidHorizon, horizon, f.maxHorizon)
	}
	if currentMonth < 1 || currentMonth > 12 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidMonth, currentMonth)
	}

	out := make(models.Projection, 0, horizon)
	w := window
	for i := 1; i <= horizon; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		amount, err := f.step(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		month, yearOffset := util.MonthStep(currentMonth, i)
		out = append(out, models.MonthProjection{
			Month:           util.MonthName(month),
			YearOffset:      yearOffset,
			EstimatedAmount: amount,
		})
		w = w.Slide(w.Tail().WithAmount(amount))
	}
	return out, nil
}

// step predicts the next month's amount from one window.
func (f *Forecaster) step(ctx context.Context, w features.Window) (float64, error) {
	x, err := f.normalizer.Features(w.Flatten())
	if err != nil {
		return 0, err
	}
	z, err := f.regressor.Predict(ctx, x)
	if err != nil {
		return 0, err
	}
	v, err := f.normalizer.InverseAmount(z)
	if err != nil {
		return 0, err
	}
	return Round2(v), nil
}

// Round2 rounds to two decimals with ties to even, judged on the exact binary
// value of v: 1.125 gives 1.12 while 2.675, stored just below the tie, gives 2.67.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', 60))
	if err != nil {
		return v
	}
	return exact.RoundBank(2).InexactFloat64()
}
