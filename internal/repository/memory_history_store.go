package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/domain/repository"
)

// MemoryHistoryStore keeps everything in process. Used for demos, the CLI
// and tests; contents are lost on restart.
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]models.User
	emails  map[string]int64
	history map[int64]map[int]models.HistoryEntry
	now     func() time.Time
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		users:   make(map[int64]models.User),
		emails:  make(map[string]int64),
		history: make(map[int64]map[int]models.HistoryEntry),
		now:     time.Now,
	}
}

var _ repository.HistoryStore = (*MemoryHistoryStore)(nil)

func (s *MemoryHistoryStore) Init(context.Context) error { return nil }

func (s *MemoryHistoryStore) CreateUser(_ context.Context, name, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.emails[key]; ok {
		return models.User{}, fmt.Errorf("%w: %s", models.ErrUserExists, email)
	}
	s.nextID++
	u := models.User{ID: s.nextID, Name: name, Email: email, CreatedAt: s.now().UTC().Truncate(time.Second)}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return u, nil
}

func (s *MemoryHistoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %d", models.ErrUserNotFound, id)
	}
	return u, nil
}

func (s *MemoryHistoryStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// AddHistory is all-or-nothing: an unknown user rejects the whole batch.
func (s *MemoryHistoryStore) AddHistory(_ context.Context, entries []models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if _, ok := s.users[e.UserID]; !ok {
			return fmt.Errorf("%w: %d", models.ErrUserNotFound, e.UserID)
		}
	}
	for _, e := range entries {
		months, ok := s.history[e.UserID]
		if !ok {
			months = make(map[int]models.HistoryEntry)
			s.history[e.UserID] = months
		}
		months[e.Month] = e
	}
	return nil
}

func (s *MemoryHistoryStore) GetHistory(_ context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	months := s.history[userID]
	out := make([]models.HistoryEntry, 0, len(months))
	for _, e := range months {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *MemoryHistoryStore) CountHistory(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history[userID]), nil
}

func (s *MemoryHistoryStore) Health(context.Context) error { return nil }

func (s *MemoryHistoryStore) Close() error { return nil }
