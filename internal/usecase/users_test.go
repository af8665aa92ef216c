package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/repository"
	"CupoCast/internal/services/risk"
	pkgkafka "CupoCast/pkg/kafka"
)

func TestListUsersWithHistoryFiltersByMonths(t *testing.T) {
	store := repository.NewMemoryHistoryStore()
	full := seedUser(t, store, "full@example.com", 1, 2, 3, 4)
	seedUser(t, store, "short@example.com", 1, 2)
	seedUser(t, store, "none@example.com")

	uc := NewUserUseCase(store, nil, nil, nil)
	uc.fanout = 2

	all, err := uc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := uc.ListUsersWithHistory(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, full.ID, got[0].ID)
	assert.Equal(t, 4, got[0].HistoryMonths)
}

func TestHistoryUnknownUser(t *testing.T) {
	uc := NewUserUseCase(repository.NewMemoryHistoryStore(), nil, nil, nil)
	_, err := uc.History(context.Background(), 5)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestAddHistoryStampsAndValidates(t *testing.T) {
	store := repository.NewMemoryHistoryStore()
	u := seedUser(t, store, "a@example.com")
	uc := NewUserUseCase(store, nil, nil, nil)
	ctx := context.Background()

	err := uc.AddHistory(ctx, u.ID, []models.HistoryEntry{{Month: 1, Amount: -5}})
	assert.ErrorIs(t, err, models.ErrInvalidRecord)

	require.NoError(t, uc.AddHistory(ctx, u.ID, []models.HistoryEntry{
		{UserID: 999, Month: 2, Amount: 20},
		{Month: 1, Amount: 10},
	}))
	hist, err := uc.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, u.ID, hist[0].UserID)
	assert.Equal(t, 1, hist[0].Month)
}

func TestCreateUserTrimsAndRejectsDuplicates(t *testing.T) {
	uc := NewUserUseCase(repository.NewMemoryHistoryStore(), nil, nil, nil)
	ctx := context.Background()

	u, err := uc.CreateUser(ctx, "  Ana ", "Ana@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = uc.CreateUser(ctx, "Ana", "ana@example.com")
	assert.ErrorIs(t, err, models.ErrUserExists)
	_, err = uc.CreateUser(ctx, " ", "x@example.com")
	assert.ErrorIs(t, err, models.ErrInvalidRecord)
}

func TestRiskEvaluateStoredUser(t *testing.T) {
	store := repository.NewMemoryHistoryStore()
	u := seedUser(t, store, "a@example.com", 300, 200, 100)
	pub := &capturePublisher{}
	uc := NewRiskUseCase(store, risk.NewClassifier(), pub, nil, nil)

	res, err := uc.Evaluate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, res.Level)
	assert.True(t, res.Signals.DecliningTrend)
	assert.Equal(t, u.ID, res.UserID)
	assert.Len(t, res.Analyzed, 3)
	assert.Len(t, pub.risks, 1)

	_, err = uc.Evaluate(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestRiskEvaluateRecordsInsufficient(t *testing.T) {
	uc := NewRiskUseCase(repository.NewMemoryHistoryStore(), risk.NewClassifier(), nil, nil, nil)
	res, err := uc.EvaluateRecords(context.Background(), []models.MonthlyRecord{{Amount: 1, Score: 700, TermMonths: 6}})
	require.NoError(t, err)
	assert.Equal(t, models.RiskInsufficientHistory, res.Level)
}

func TestKafkaHistoryHandler(t *testing.T) {
	store := repository.NewMemoryHistoryStore()
	u := seedUser(t, store, "a@example.com")
	h := NewKafkaHistoryHandler("cupocast.history", NewUserUseCase(store, nil, nil, nil), nil)
	ctx := context.Background()

	assert.Equal(t, "cupocast.history", h.Topic())

	require.NoError(t, h.Handle(ctx, []byte(`{"user_id":1,"month":1,"amount":50,"loan_count":1,"score":710}`)))
	require.NoError(t, h.Handle(ctx, []byte(` [{"user_id":1,"month":2,"amount":60},{"user_id":1,"month":3,"amount":70}]`)))
	n, err := store.CountHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for name, payload := range map[string]string{
		"malformed":    `{"user_id":`,
		"empty":        ``,
		"invalid":      `{"user_id":1,"month":0,"amount":1}`,
		"unknown user": `{"user_id":77,"month":1,"amount":1}`,
	} {
		err := h.Handle(ctx, []byte(payload))
		assert.ErrorIs(t, err, pkgkafka.ErrPermanent, name)
	}
}
