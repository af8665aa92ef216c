package models

import (
	"fmt"
	"time"
)

// User is a borrower known to the service.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// HistoryEntry is one stored month of loan activity for a user.
// Month is a chronological index (1 = oldest known month).
type HistoryEntry struct {
	UserID       int64   `json:"user_id"`
	Month        int     `json:"month"`
	Amount       float64 `json:"amount"`
	LoanCount    int     `json:"loan_count"`
	LatePayments int     `json:"late_payments"`
	Score        float64 `json:"score"`
}

// Validate checks the entry before it is persisted.
func (h HistoryEntry) Validate() error {
	if h.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be > 0", ErrInvalidRecord)
	}
	if h.Month < 1 {
		return fmt.Errorf("%w: month must be >= 1, got %d", ErrInvalidRecord, h.Month)
	}
	if h.LoanCount < 0 {
		return fmt.Errorf("%w: loan_count must be >= 0, got %d", ErrInvalidRecord, h.LoanCount)
	}
	return h.ToRecord().Validate()
}

// ToRecord derives the model-facing record. Term and bank partners are not
// tracked per month, so the defaults apply.
func (h HistoryEntry) ToRecord() MonthlyRecord {
	return MonthlyRecord{
		Loaned:       h.LoanCount > 0,
		Amount:       h.Amount,
		Score:        h.Score,
		LatePayments: h.LatePayments,
		TermMonths:   DefaultTermMonths,
		BankPartners: DefaultBankPartners,
	}
}

// ToRecords converts entries preserving order.
func ToRecords(entries []HistoryEntry) []MonthlyRecord {
	out := make([]MonthlyRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ToRecord())
	}
	return out
}

// UserSummary is a user plus the number of stored history months.
type UserSummary struct {
	User
	HistoryMonths int `json:"history_months"`
}
