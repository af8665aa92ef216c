package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordProjection("ok", 6)
	r.RecordProjection("ok", 3)
	r.RecordProjection("insufficient_history", 6)
	r.RecordRisk("high_risk")
	r.RecordCache("hit")
	r.RecordError("regressor")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.projections.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.projections.WithLabelValues("insufficient_history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.riskLevels.WithLabelValues("high_risk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("regressor")))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
