package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/domain/repository"
	"CupoCast/pkg/sqlite"
	"CupoCast/pkg/util"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history_months (
		user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		month         INTEGER NOT NULL,
		amount        REAL    NOT NULL DEFAULT 0,
		loan_count    INTEGER NOT NULL DEFAULT 0,
		late_payments INTEGER NOT NULL DEFAULT 0,
		score         REAL    NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, month)
	)`,
}

// SQLiteHistoryStore keeps users and history in an embedded SQLite file.
type SQLiteHistoryStore struct {
	client *sqlite.Client
	now    func() time.Time
}

// NewSQLiteHistoryStore wraps an open client. Call Init before use.
func NewSQLiteHistoryStore(client *sqlite.Client) *SQLiteHistoryStore {
	return &SQLiteHistoryStore{client: client, now: time.Now}
}

var _ repository.HistoryStore = (*SQLiteHistoryStore)(nil)

func (s *SQLiteHistoryStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, sqliteSchema)
}

func (s *SQLiteHistoryStore) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	created := s.now().UTC().Truncate(time.Second)
	res, err := s.client.DB().ExecContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)`,
		name, email, created.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%w: %s", models.ErrUserExists, email)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user id: %w", err)
	}
	return models.User{ID: id, Name: name, Email: email, CreatedAt: created}, nil
}

func (s *SQLiteHistoryStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	row := s.client.DB().QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id)
	u, err := scanSQLiteUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: %d", models.ErrUserNotFound, id)
	}
	return u, err
}

func (s *SQLiteHistoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT id, name, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteHistoryStore) AddHistory(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.client.Tx(ctx, func(tx *sql.Tx) error {
		seen := make(map[int64]bool)
		for _, e := range entries {
			if seen[e.UserID] {
				continue
			}
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, e.UserID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %d", models.ErrUserNotFound, e.UserID)
			}
			if err != nil {
				return fmt.Errorf("lookup user: %w", err)
			}
			seen[e.UserID] = true
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO history_months (user_id, month, amount, loan_count, late_payments, score)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, month) DO UPDATE SET
				amount = excluded.amount,
				loan_count = excluded.loan_count,
				late_payments = excluded.late_payments,
				score = excluded.score`)
		if err != nil {
			return fmt.Errorf("prepare history upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.UserID, e.Month, e.Amount, e.LoanCount, e.LatePayments, e.Score); err != nil {
				return fmt.Errorf("upsert history %d/%d: %w", e.UserID, e.Month, err)
			}
		}
		return nil
	})
}

func (s *SQLiteHistoryStore) GetHistory(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.client.DB().QueryContext(ctx, `
		SELECT user_id, month, amount, loan_count, late_payments, score
		FROM history_months WHERE user_id = ?
		ORDER BY month DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.UserID, &e.Month, &e.Amount, &e.LoanCount, &e.LatePayments, &e.Score); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverseEntries(out)
	return out, nil
}

func (s *SQLiteHistoryStore) CountHistory(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.client.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history_months WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

func (s *SQLiteHistoryStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *SQLiteHistoryStore) Close() error {
	return s.client.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteUser(r rowScanner) (models.User, error) {
	var (
		u       models.User
		created string
	)
	if err := r.Scan(&u.ID, &u.Name, &u.Email, &created); err != nil {
		return models.User{}, err
	}
	u.CreatedAt = util.ParseTimeDefault(created, time.Time{})
	return u, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// reverseEntries flips newest-first query output into chronological order.
func reverseEntries(e []models.HistoryEntry) {
	for i, j := 0, len(e)-1; i < j; i, j = i+1, j-1 {
		e[i], e[j] = e[j], e[i]
	}
}
