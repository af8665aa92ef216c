package repository

import (
	"context"

	"CupoCast/internal/domain/models"
)

// HistoryStore persists users and their monthly loan history.
type HistoryStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	CreateUser(ctx context.Context, name, email string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AddHistory(ctx context.Context, entries []models.HistoryEntry) error
	// GetHistory returns up to limit most recent months in chronological order.
	// limit <= 0 returns the full history.
	GetHistory(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error)
	CountHistory(ctx context.Context, userID int64) (int, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// EventPublisher emits assessment events to downstream consumers.
type EventPublisher interface {
	PublishProjection(ctx context.Context, res *models.ProjectionResult) error
	PublishRisk(ctx context.Context, res *models.RiskAssessment) error
}

type Metrics interface {
	RecordProjection(status string, horizon int)
	RecordRisk(level string)
	RecordError(kind string)
	RecordCache(result string)
	RecordLatency(op string, seconds float64)
	RecordEstimate(amount float64)
}
