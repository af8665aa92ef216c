package regressor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CupoCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRegressorPredict(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/predict", r.URL.Path)
		var req predictReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sum := 0.0
		for _, v := range req.Features {
			sum += v
		}
		_ = json.NewEncoder(w).Encode(predictResp{Prediction: sum})
	}))
	defer srv.Close()

	r := NewHTTPRegressor(srv.URL, time.Second, 3, 3)
	got, err := r.Predict(context.Background(), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "first failure is retried")
}

func TestHTTPRegressorRejectsWrongLength(t *testing.T) {
	r := NewHTTPRegressor("http://127.0.0.1:0", time.Second, 3, 1)
	_, err := r.Predict(context.Background(), []float64{1})
	assert.ErrorIs(t, err, models.ErrScalerDimensionMismatch)
}

func TestHTTPRegressorDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	r := NewHTTPRegressor(srv.URL, time.Second, 1, 5)
	_, err := r.Predict(context.Background(), []float64{1})
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPRegressorKeepsDeadlineCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	r := NewHTTPRegressor(srv.URL, time.Second, 1, 50)
	_, err := r.Predict(ctx, []float64{1})
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
