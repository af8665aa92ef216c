package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/domain/repository"
	"CupoCast/pkg/sqlite"
)

func newSQLiteStore(t *testing.T) repository.HistoryStore {
	t.Helper()
	client, err := sqlite.NewClient(sqlite.MemoryPath)
	require.NoError(t, err)
	store := NewSQLiteHistoryStore(client)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newMemoryStore(t *testing.T) repository.HistoryStore {
	t.Helper()
	return NewMemoryHistoryStore()
}

func eachStore(t *testing.T, fn func(t *testing.T, s repository.HistoryStore)) {
	for name, mk := range map[string]func(*testing.T) repository.HistoryStore{
		"memory": newMemoryStore,
		"sqlite": newSQLiteStore,
	} {
		t.Run(name, func(t *testing.T) { fn(t, mk(t)) })
	}
}

func months(userID int64, amounts ...float64) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(amounts))
	for i, a := range amounts {
		out[i] = models.HistoryEntry{UserID: userID, Month: i + 1, Amount: a, LoanCount: 1, Score: 700}
	}
	return out
}

func TestStoreUsersRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, s repository.HistoryStore) {
		ctx := context.Background()
		a, err := s.CreateUser(ctx, "Ana", "ana@example.com")
		require.NoError(t, err)
		b, err := s.CreateUser(ctx, "Luis", "luis@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		got, err := s.GetUser(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, "ana@example.com", got.Email)
		assert.False(t, got.CreatedAt.IsZero())

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, a.ID, users[0].ID)
	})
}

func TestStoreRejectsDuplicateEmail(t *testing.T) {
	eachStore(t, func(t *testing.T, s repository.HistoryStore) {
		ctx := context.Background()
		_, err := s.CreateUser(ctx, "Ana", "ana@example.com")
		require.NoError(t, err)
		_, err = s.CreateUser(ctx, "Ana 2", "ana@example.com")
		assert.ErrorIs(t, err, models.ErrUserExists)
	})
}

func TestStoreUnknownUser(t *testing.T) {
	eachStore(t, func(t *testing.T, s repository.HistoryStore) {
		ctx := context.Background()
		_, err := s.GetUser(ctx, 42)
		assert.ErrorIs(t, err, models.ErrUserNotFound)

		err = s.AddHistory(ctx, months(42, 10))
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestStoreHistoryChronologicalWithLimit(t *testing.T) {
	eachStore(t, func(t *testing.T, s repository.HistoryStore) {
		ctx := context.Background()
		u, err := s.CreateUser(ctx, "Ana", "ana@example.com")
		require.NoError(t, err)

		entries := months(u.ID, 10, 20, 30, 40, 50)
		// insert out of order
		require.NoError(t, s.AddHistory(ctx, []models.HistoryEntry{entries[3], entries[0], entries[4]}))
		require.NoError(t, s.AddHistory(ctx, []models.HistoryEntry{entries[2], entries[1]}))

		all, err := s.GetHistory(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i, e := range all {
			assert.Equal(t, i+1, e.Month)
		}

		last3, err := s.GetHistory(ctx, u.ID, 3)
		require.NoError(t, err)
		require.Len(t, last3, 3)
		assert.Equal(t, []float64{30, 40, 50}, []float64{last3[0].Amount, last3[1].Amount, last3[2].Amount})

		n, err := s.CountHistory(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})
}

func TestStoreHistoryUpsertsMonth(t *testing.T) {
	eachStore(t, func(t *testing.T, s repository.HistoryStore) {
		ctx := context.Background()
		u, err := s.CreateUser(ctx, "Ana", "ana@example.com")
		require.NoError(t, err)

		require.NoError(t, s.AddHistory(ctx, months(u.ID, 10, 20)))
		fix := models.HistoryEntry{UserID: u.ID, Month: 2, Amount: 25, LatePayments: 1, Score: 640}
		require.NoError(t, s.AddHistory(ctx, []models.HistoryEntry{fix}))

		got, err := s.GetHistory(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, fix, got[1])
	})
}

func TestStoreEmptyHistory(t *testing.T) {
	eachStore(t, func(t *testing.T, s repository.HistoryStore) {
		got, err := s.GetHistory(context.Background(), 7, 12)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, s.Health(context.Background()))
	})
}
