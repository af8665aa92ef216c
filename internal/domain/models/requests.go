package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

// DefaultHorizon applies when a projection request omits horizon.
const DefaultHorizon = 6

// Horizon and CurrentMonth are pointers so an explicit 0 is told apart from
// an omitted field; range checks belong to the projection use case.
type ProjectionRequest struct {
	UserID       int64 `json:"user_id" validate:"required,gt=0"`
	Horizon      *int  `json:"horizon"`
	CurrentMonth *int  `json:"current_month"`
	CurrentYear  int   `json:"current_year" validate:"omitempty,gte=1900,lte=9999"`
}

type HistoryRecordRequest struct {
	Amount       float64 `json:"amount" validate:"gte=0"`
	LoanCount    int     `json:"loan_count" validate:"gte=0"`
	Loaned       *bool   `json:"loaned"`
	Score        float64 `json:"score" validate:"gte=0,lte=1000"`
	LatePayments int     `json:"late_payments" validate:"gte=0"`
	TermMonths   int     `json:"term_months" default:"6" validate:"gt=0"`
	BankPartners *bool   `json:"bank_partners"`
}

// ToRecord converts the request into a model record; Loaned falls back to
// loan_count > 0 and BankPartners to the default.
func (r HistoryRecordRequest) ToRecord() MonthlyRecord {
	loaned := r.LoanCount > 0
	if r.Loaned != nil {
		loaned = *r.Loaned
	}
	partners := DefaultBankPartners
	if r.BankPartners != nil {
		partners = *r.BankPartners
	}
	term := r.TermMonths
	if term <= 0 {
		term = DefaultTermMonths
	}
	return MonthlyRecord{
		Loaned:       loaned,
		Amount:       r.Amount,
		Score:        r.Score,
		LatePayments: r.LatePayments,
		TermMonths:   term,
		BankPartners: partners,
	}
}

type SimulateProjectionRequest struct {
	History      []HistoryRecordRequest `json:"history" validate:"required,dive"`
	Horizon      *int                   `json:"horizon"`
	CurrentMonth *int                   `json:"current_month"`
	CurrentYear  int                    `json:"current_year" validate:"omitempty,gte=1900,lte=9999"`
}

type RiskEvaluateRequest struct {
	History []HistoryRecordRequest `json:"history" validate:"required,dive"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=150"`
}

type AppendHistoryRequest struct {
	UserID  int64                 `param:"id" json:"-" validate:"required,gt=0"`
	Entries []HistoryEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

type HistoryEntryRequest struct {
	Month        int     `json:"month" validate:"required,gte=1"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	LoanCount    int     `json:"loan_count" validate:"gte=0"`
	LatePayments int     `json:"late_payments" validate:"gte=0"`
	Score        float64 `json:"score" validate:"gte=0,lte=1000"`
}

type ListUsersRequest struct {
	WithHistory bool `query:"with_history" json:"with_history"`
	MinMonths   int  `query:"min_months" json:"min_months" validate:"omitempty,gte=1"`
}

type UserPathRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

// ToEntry converts the request for userID.
func (r HistoryEntryRequest) ToEntry(userID int64) HistoryEntry {
	return HistoryEntry{
		UserID:       userID,
		Month:        r.Month,
		Amount:       r.Amount,
		LoanCount:    r.LoanCount,
		LatePayments: r.LatePayments,
		Score:        r.Score,
	}
}

// RecordsFromRequests converts caller-supplied history preserving order.
func RecordsFromRequests(in []HistoryRecordRequest) []MonthlyRecord {
	out := make([]MonthlyRecord, len(in))
	for i, r := range in {
		out[i] = r.ToRecord()
	}
	return out
}
