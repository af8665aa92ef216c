package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CupoCast/internal/domain/models"
	domrepo "CupoCast/internal/domain/repository"
	"CupoCast/internal/services/features"
	"CupoCast/pkg/cache"
	"CupoCast/pkg/logger"
)

const projectionCachePrefix = "projection"

// Projector runs the autoregressive forecast over a prepared window.
type Projector interface {
	Forecast(ctx context.Context, window features.Window, horizon, currentMonth int) (models.Projection, error)
	MaxHorizon() int
}

// ProjectionUseCase projects borrowing capacity for stored users or for a
// caller-supplied history.
type ProjectionUseCase struct {
	store     domrepo.HistoryStore
	projector Projector
	cache     cache.Service
	cacheTTL  time.Duration
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
}

// NewProjectionUseCase wires the use case. A nil cache disables result caching.
func NewProjectionUseCase(
	store domrepo.HistoryStore,
	projector Projector,
	c cache.Service,
	cacheTTL time.Duration,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *ProjectionUseCase {
	if publisher == nil {
		publisher = domrepo.NoopPublisher{}
	}
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ProjectionUseCase{
		store:     store,
		projector: projector,
		cache:     c,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

type ProjectParams struct {
	UserID       int64
	Horizon      int
	CurrentMonth int
	// CurrentYear > 0 stamps absolute years on the projection.
	CurrentYear int
}

// Project loads the user's most recent months and forecasts Horizon months ahead.
func (uc *ProjectionUseCase) Project(ctx context.Context, p ProjectParams) (*models.ProjectionResult, error) {
	if err := uc.checkParams(p.Horizon, p.CurrentMonth); err != nil {
		return nil, err
	}
	if _, err := uc.store.GetUser(ctx, p.UserID); err != nil {
		return nil, err
	}
	entries, err := uc.store.GetHistory(ctx, p.UserID, features.WindowSize)
	if err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("load history: %w", err)
	}
	return uc.run(ctx, p, models.ToRecords(entries))
}

// ProjectHistory forecasts from records supplied by the caller, oldest first.
func (uc *ProjectionUseCase) ProjectHistory(ctx context.Context, records []models.MonthlyRecord, horizon, currentMonth, currentYear int) (*models.ProjectionResult, error) {
	if err := uc.checkParams(horizon, currentMonth); err != nil {
		return nil, err
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return uc.run(ctx, ProjectParams{Horizon: horizon, CurrentMonth: currentMonth, CurrentYear: currentYear}, records)
}

func (uc *ProjectionUseCase) checkParams(horizon, month int) error {
	if horizon < 1 || horizon > uc.projector.MaxHorizon() {
		return fmt.Errorf("%w: %d not in [1, %d]", models.ErrInvalidHorizon, horizon, uc.projector.MaxHorizon())
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", models.ErrInvalidMonth, month)
	}
	return nil
}

func (uc *ProjectionUseCase) run(ctx context.Context, p ProjectParams, records []models.MonthlyRecord) (*models.ProjectionResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("projection", time.Since(start).Seconds()) }()

	res := &models.ProjectionResult{
		UserID:       p.UserID,
		Horizon:      p.Horizon,
		CurrentMonth: p.CurrentMonth,
		Months:       min(len(records), features.WindowSize),
	}

	if len(records) < models.MinHistoryMonths {
		res.Status = models.ProjectionInsufficientHistory
		res.Message = fmt.Sprintf("%v: need at least %d months, have %d",
			models.ErrInsufficientHistory, models.MinHistoryMonths, len(records))
		uc.metrics.RecordProjection(string(res.Status), p.Horizon)
		uc.publish(ctx, res)
		return res, nil
	}

	window := features.BuildWindow(records)
	key := uc.cacheKey(p, window)
	if uc.cache != nil && key != "" {
		var cached models.ProjectionResult
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			uc.metrics.RecordCache("hit")
			uc.metrics.RecordProjection(string(cached.Status), p.Horizon)
			uc.publish(ctx, &cached)
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			uc.log.Warn("projection cache get failed", logger.String("key", key), logger.Error(err))
		}
		uc.metrics.RecordCache("miss")
	}

	proj, err := uc.projector.Forecast(ctx, window, p.Horizon, p.CurrentMonth)
	if err != nil {
		uc.metrics.RecordError(errorKind(err))
		return nil, err
	}
	if p.CurrentYear > 0 {
		proj = proj.WithYear(p.CurrentYear)
	}

	res.Status = models.ProjectionOK
	res.Projection = proj
	uc.metrics.RecordProjection(string(res.Status), p.Horizon)
	for _, m := range proj {
		uc.metrics.RecordEstimate(m.EstimatedAmount)
	}

	if uc.cache != nil && key != "" {
		if err := uc.cache.Set(ctx, key, res, uc.cacheTTL); err != nil {
			uc.log.Warn("projection cache set failed", logger.String("key", key), logger.Error(err))
		}
	}
	uc.publish(ctx, res)
	return res, nil
}

// cacheKey fingerprints the exact window so stale entries are never served
// after the history changes.
func (uc *ProjectionUseCase) cacheKey(p ProjectParams, w features.Window) string {
	b, err := json.Marshal(w)
	if err != nil {
		return ""
	}
	return cache.GenerateKeyWithParams(userCachePrefix(p.UserID), p.Horizon, p.CurrentMonth, p.CurrentYear, cache.HashKey(b))
}

func userCachePrefix(userID int64) string {
	return cache.GenerateKeyWithParams(projectionCachePrefix, userID)
}

func (uc *ProjectionUseCase) publish(ctx context.Context, res *models.ProjectionResult) {
	if err := uc.publisher.PublishProjection(ctx, res); err != nil {
		uc.metrics.RecordError("publish")
		uc.log.Warn("publish projection event failed", logger.Int64("user_id", res.UserID), logger.Error(err))
	}
}

// errorKind maps domain errors to a low-cardinality metrics label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidHorizon), errors.Is(err, models.ErrInvalidMonth):
		return "invalid_request"
	case errors.Is(err, models.ErrScalerDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, models.ErrRegressorUnavailable):
		return "regressor_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
