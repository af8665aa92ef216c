package regressor

import (
	"context"
	"fmt"
	"time"

	"CupoCast/internal/domain/models"
	domsvc "CupoCast/internal/domain/service"
)

// HTTPRegressor delegates prediction to a model server exposing POST /predict.
type HTTPRegressor struct {
	base     *HTTPServiceBase
	inputDim int
	attempts int
}

func NewHTTPRegressor(baseURL string, timeout time.Duration, inputDim, attempts int) *HTTPRegressor {
	return &HTTPRegressor{
		base:     NewHTTPServiceBase(baseURL, timeout),
		inputDim: inputDim,
		attempts: attempts,
	}
}

type predictReq struct {
	Features []float64 `json:"features"`
}

type predictResp struct {
	Prediction float64 `json:"prediction"`
}

func (r *HTTPRegressor) InputDim() int { return r.inputDim }

func (r *HTTPRegressor) Predict(ctx context.Context, x []float64) (float64, error) {
	if len(x) != r.inputDim {
		return 0, fmt.Errorf("%w: model expects %d features, got %d", models.ErrScalerDimensionMismatch, r.inputDim, len(x))
	}
	var pr predictResp
	if err := r.base.PostJSONWithRetry(ctx, "/predict", predictReq{Features: x}, &pr, r.attempts); err != nil {
		return 0, fmt.Errorf("%w: remote predict: %w", models.ErrRegressorUnavailable, err)
	}
	return pr.Prediction, nil
}

var _ domsvc.Regressor = (*HTTPRegressor)(nil)
