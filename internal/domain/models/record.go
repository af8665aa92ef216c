package models

import "fmt"

// Defaults applied when the upstream history does not carry the field.
const (
	DefaultTermMonths   = 6
	DefaultBankPartners = true
)

// FeatureCount is the number of features each month contributes to a model input.
const FeatureCount = 6

// MonthlyRecord is one month of a user's borrowing behaviour.
// Field order mirrors the feature order consumed by the regressor.
type MonthlyRecord struct {
	Loaned       bool    `json:"loaned"`
	Amount       float64 `json:"amount"`
	Score        float64 `json:"score"`
	LatePayments int     `json:"late_payments"`
	TermMonths   int     `json:"term_months"`
	BankPartners bool    `json:"bank_partners"`
}

// NewMonthlyRecord builds a validated record.
func NewMonthlyRecord(loaned bool, amount, score float64, latePayments, termMonths int, bankPartners bool) (MonthlyRecord, error) {
	r := MonthlyRecord{
		Loaned:       loaned,
		Amount:       amount,
		Score:        score,
		LatePayments: latePayments,
		TermMonths:   termMonths,
		BankPartners: bankPartners,
	}
	if err := r.Validate(); err != nil {
		return MonthlyRecord{}, err
	}
	return r, nil
}

// Validate checks the record invariants.
func (r MonthlyRecord) Validate() error {
	if r.Amount < 0 {
		return fmt.Errorf("%w: amount must be >= 0, got %v", ErrInvalidRecord, r.Amount)
	}
	if r.LatePayments < 0 {
		return fmt.Errorf("%w: late_payments must be >= 0, got %d", ErrInvalidRecord, r.LatePayments)
	}
	if r.TermMonths <= 0 {
		return fmt.Errorf("%w: term_months must be > 0, got %d", ErrInvalidRecord, r.TermMonths)
	}
	return nil
}

// Features returns the record in canonical order:
// loaned, amount, score, late payments, term, bank partners.
func (r MonthlyRecord) Features() [FeatureCount]float64 {
	return [FeatureCount]float64{
		boolToFloat(r.Loaned),
		r.Amount,
		r.Score,
		float64(r.LatePayments),
		float64(r.TermMonths),
		boolToFloat(r.BankPartners),
	}
}

// WithAmount returns a copy of the record carrying a new amount.
func (r MonthlyRecord) WithAmount(amount float64) MonthlyRecord {
	r.Amount = amount
	return r
}

// PaddingRecord is the filler used in front of short histories.
func PaddingRecord() MonthlyRecord {
	return MonthlyRecord{TermMonths: DefaultTermMonths}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
