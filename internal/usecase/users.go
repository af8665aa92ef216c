package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"CupoCast/internal/domain/models"
	domrepo "CupoCast/internal/domain/repository"
	"CupoCast/pkg/cache"
	"CupoCast/pkg/logger"
	"CupoCast/pkg/util"
)

// defaultCountFanout bounds concurrent CountHistory calls when filtering users.
const defaultCountFanout = 8

// UserUseCase covers listing, history lookup and seeding.
type UserUseCase struct {
	store   domrepo.HistoryStore
	cache   cache.Service
	metrics domrepo.Metrics
	log     *logger.Logger
	fanout  int
}

// NewUserUseCase wires the use case. The cache, if any, is the projection
// cache; appending history invalidates the user's entries.
func NewUserUseCase(store domrepo.HistoryStore, c cache.Service, metrics domrepo.Metrics, log *logger.Logger) *UserUseCase {
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &UserUseCase{store: store, cache: c, metrics: metrics, log: log, fanout: defaultCountFanout}
}

func (uc *UserUseCase) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := uc.store.ListUsers(ctx)
	if err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListUsersWithHistory returns users holding at least minMonths months.
// minMonths below MinHistoryMonths is raised to it.
func (uc *UserUseCase) ListUsersWithHistory(ctx context.Context, minMonths int) ([]models.UserSummary, error) {
	if minMonths < models.MinHistoryMonths {
		minMonths = models.MinHistoryMonths
	}
	users, err := uc.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(users))
	errs := make([]error, len(users))
	sem := make(chan struct{}, uc.fanout)
	var wg sync.WaitGroup

	for i, u := range users {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			counts[i], errs[i] = uc.store.CountHistory(ctx, id)
		}(i, u.ID)
	}
	wg.Wait()

	out := make([]models.UserSummary, 0, len(users))
	for i, u := range users {
		if errs[i] != nil {
			uc.metrics.RecordError("store")
			return nil, fmt.Errorf("count history for user %d: %w", u.ID, errs[i])
		}
		if counts[i] >= minMonths {
			out = append(out, models.UserSummary{User: u, HistoryMonths: counts[i]})
		}
	}
	return out, nil
}

// History returns the user's full history, oldest first.
func (uc *UserUseCase) History(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	if _, err := uc.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	entries, err := uc.store.GetHistory(ctx, userID, 0)
	if err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

func (uc *UserUseCase) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	name, email = strings.TrimSpace(name), util.NormalizeEmail(email)
	if name == "" || email == "" {
		return models.User{}, fmt.Errorf("%w: name and email are required", models.ErrInvalidRecord)
	}
	return uc.store.CreateUser(ctx, name, email)
}

// AddHistory stamps userID on every entry, validates, stores, then drops
// cached projections for the user.
func (uc *UserUseCase) AddHistory(ctx context.Context, userID int64, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	stamped := make([]models.HistoryEntry, len(entries))
	for i, e := range entries {
		e.UserID = userID
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entries[%d]: %w", i, err)
		}
		stamped[i] = e
	}
	if err := uc.store.AddHistory(ctx, stamped); err != nil {
		return err
	}
	uc.invalidate(ctx, userID)
	return nil
}

// Ingest stores entries that already carry their user ids.
func (uc *UserUseCase) Ingest(ctx context.Context, entries []models.HistoryEntry) error {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entries[%d]: %w", i, err)
		}
	}
	if err := uc.store.AddHistory(ctx, entries); err != nil {
		return err
	}
	seen := make(map[int64]bool)
	for _, e := range entries {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			uc.invalidate(ctx, e.UserID)
		}
	}
	return nil
}

func (uc *UserUseCase) invalidate(ctx context.Context, userID int64) {
	if uc.cache == nil {
		return
	}
	pattern := cache.BuildPattern(userCachePrefix(userID) + ":")
	if err := uc.cache.DeleteByPattern(ctx, pattern); err != nil {
		uc.log.Warn("projection cache invalidation failed", logger.Int64("user_id", userID), logger.Error(err))
	}
}
