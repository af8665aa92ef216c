package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/domain/repository"
	"CupoCast/pkg/clickhouse"
)

// ClickHouseHistoryStore stores users and months in ReplacingMergeTree
// tables. Re-sent months replace earlier versions; reads use FINAL.
type ClickHouseHistoryStore struct {
	client *clickhouse.Client
	// ClickHouse has no sequences; ids are allocated under this lock.
	idMu sync.Mutex
	now  func() time.Time
}

func NewClickHouseHistoryStore(client *clickhouse.Client) *ClickHouseHistoryStore {
	return &ClickHouseHistoryStore{client: client, now: time.Now}
}

var _ repository.HistoryStore = (*ClickHouseHistoryStore)(nil)

func clickhouseSchema(db string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.users (
			id         Int64,
			name       String,
			email      String,
			created_at DateTime
		) ENGINE = ReplacingMergeTree
		ORDER BY id`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.history_months (
			user_id       Int64,
			month         Int64,
			amount        Float64,
			loan_count    Int64,
			late_payments Int64,
			score         Float64,
			updated_at    DateTime64(3)
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY (user_id, month)`, db),
	}
}

func (s *ClickHouseHistoryStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, clickhouseSchema(s.client.Database()))
}

func (s *ClickHouseHistoryStore) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	db := s.client.DB()
	var exists uint64
	if err := db.QueryRowContext(ctx,
		`SELECT count() FROM users FINAL WHERE lower(email) = lower(?)`, email).Scan(&exists); err != nil {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}
	if exists > 0 {
		return models.User{}, fmt.Errorf("%w: %s", models.ErrUserExists, email)
	}

	var maxID int64
	if err := db.QueryRowContext(ctx, `SELECT max(id) FROM users`).Scan(&maxID); err != nil {
		return models.User{}, fmt.Errorf("next user id: %w", err)
	}

	u := models.User{ID: maxID + 1, Name: name, Email: email, CreatedAt: s.now().UTC().Truncate(time.Second)}
	if err := s.client.InsertBatch(ctx,
		`INSERT INTO users (id, name, email, created_at)`,
		[][]interface{}{{u.ID, u.Name, u.Email, u.CreatedAt}}); err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *ClickHouseHistoryStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.client.DB().QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users FINAL WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: %d", models.ErrUserNotFound, id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *ClickHouseHistoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT id, name, email, created_at FROM users FINAL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *ClickHouseHistoryStore) AddHistory(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	seen := make(map[int64]bool)
	for _, e := range entries {
		if seen[e.UserID] {
			continue
		}
		if _, err := s.GetUser(ctx, e.UserID); err != nil {
			return err
		}
		seen[e.UserID] = true
	}

	now := s.now().UTC()
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.UserID, int64(e.Month), e.Amount, int64(e.LoanCount), int64(e.LatePayments), e.Score, now,
		})
	}
	if err := s.client.InsertBatch(ctx,
		`INSERT INTO history_months (user_id, month, amount, loan_count, late_payments, score, updated_at)`,
		rows); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *ClickHouseHistoryStore) GetHistory(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	q := `SELECT user_id, month, amount, loan_count, late_payments, score
		FROM history_months FINAL WHERE user_id = ? ORDER BY month DESC`
	args := []interface{}{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.client.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var (
			e                    models.HistoryEntry
			month, loans, lateNo int64
		)
		if err := rows.Scan(&e.UserID, &month, &e.Amount, &loans, &lateNo, &e.Score); err != nil {
			return nil, err
		}
		e.Month, e.LoanCount, e.LatePayments = int(month), int(loans), int(lateNo)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverseEntries(out)
	return out, nil
}

func (s *ClickHouseHistoryStore) CountHistory(ctx context.Context, userID int64) (int, error) {
	var n uint64
	if err := s.client.DB().QueryRowContext(ctx,
		`SELECT count() FROM history_months FINAL WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return int(n), nil
}

func (s *ClickHouseHistoryStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *ClickHouseHistoryStore) Close() error {
	return s.client.Close()
}
