package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	projections *prometheus.CounterVec
	horizon     prometheus.Histogram
	riskLevels  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	cache       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	estimates   prometheus.Histogram
}

// New registers the recorder's collectors on reg. A nil reg means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		projections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cupocast_projections_total",
				Help: "Projection requests by outcome status",
			},
			[]string{"status"},
		),
		horizon: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cupocast_projection_horizon_months",
				Help:    "Requested projection horizon",
				Buckets: []float64{1, 3, 6, 12, 24, 36},
			},
		),
		riskLevels: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cupocast_risk_assessments_total",
				Help: "Risk assessments by level",
			},
			[]string{"level"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cupocast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cupocast_projection_cache_total",
				Help: "Projection cache lookups by result",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cupocast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		estimates: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cupocast_estimated_amount",
				Help:    "Distribution of projected monthly amounts",
				Buckets: prometheus.ExponentialBuckets(10, 2, 14),
			},
		),
	}
}

func (r *Recorder) RecordProjection(status string, horizon int) {
	r.projections.WithLabelValues(status).Inc()
	if horizon > 0 {
		r.horizon.Observe(float64(horizon))
	}
}

func (r *Recorder) RecordRisk(level string) {
	r.riskLevels.WithLabelValues(level).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCache records "hit", "miss" or "error".
func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordEstimate(amount float64) {
	r.estimates.Observe(amount)
}
