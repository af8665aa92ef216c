package repository

import (
	"context"

	"CupoCast/internal/domain/models"
)

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishProjection(context.Context, *models.ProjectionResult) error { return nil }
func (NoopPublisher) PublishRisk(context.Context, *models.RiskAssessment) error { return nil }

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordProjection(string, int) {}
func (NoopMetrics) RecordRisk(string) {}
func (NoopMetrics) RecordError(string) {}
func (NoopMetrics) RecordCache(string) {}
func (NoopMetrics) RecordLatency(string, float64) {}
func (NoopMetrics) RecordEstimate(float64) {}

var (
	_ EventPublisher = NoopPublisher{}
	_ Metrics        = NoopMetrics{}
)
