package usecase

import (
	"context"
	"fmt"
	"time"

	"CupoCast/internal/domain/models"
	domrepo "CupoCast/internal/domain/repository"
	"CupoCast/internal/services/risk"
	"CupoCast/pkg/logger"
)

// RiskClassifier scores recent behaviour.
type RiskClassifier interface {
	Classify(records []models.MonthlyRecord) models.RiskAssessment
}

type RiskUseCase struct {
	store      domrepo.HistoryStore
	classifier RiskClassifier
	publisher  domrepo.EventPublisher
	metrics    domrepo.Metrics
	log        *logger.Logger
}

func NewRiskUseCase(
	store domrepo.HistoryStore,
	classifier RiskClassifier,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *RiskUseCase {
	if publisher == nil {
		publisher = domrepo.NoopPublisher{}
	}
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RiskUseCase{store: store, classifier: classifier, publisher: publisher, metrics: metrics, log: log}
}

// Evaluate classifies a stored user's recent months.
func (uc *RiskUseCase) Evaluate(ctx context.Context, userID int64) (*models.RiskAssessment, error) {
	if _, err := uc.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	entries, err := uc.store.GetHistory(ctx, userID, risk.AnalyzedMonths)
	if err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("load history: %w", err)
	}
	res := uc.classify(models.ToRecords(entries))
	res.UserID = userID
	uc.publish(ctx, res)
	return res, nil
}

// EvaluateRecords classifies caller-supplied records, oldest first.
func (uc *RiskUseCase) EvaluateRecords(ctx context.Context, records []models.MonthlyRecord) (*models.RiskAssessment, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	res := uc.classify(records)
	uc.publish(ctx, res)
	return res, nil
}

func (uc *RiskUseCase) classify(records []models.MonthlyRecord) *models.RiskAssessment {
	start := time.Now()
	res := uc.classifier.Classify(records)
	uc.metrics.RecordLatency("risk", time.Since(start).Seconds())
	uc.metrics.RecordRisk(string(res.Level))
	return &res
}

func (uc *RiskUseCase) publish(ctx context.Context, res *models.RiskAssessment) {
	if err := uc.publisher.PublishRisk(ctx, res); err != nil {
		uc.metrics.RecordError("publish")
		uc.log.Warn("publish risk event failed", logger.Int64("user_id", res.UserID), logger.Error(err))
	}
}
