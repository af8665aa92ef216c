package models

// MonthProjection is one projected month.
type MonthProjection struct {
	Month string `json:"month"`
	// YearOffset counts calendar-year wraps relative to the starting month.
	YearOffset      int     `json:"year_offset"`
	Year            int     `json:"year,omitempty"`
	EstimatedAmount float64 `json:"estimated_amount"`
}

// Projection is an ordered sequence of projected months.
type Projection []MonthProjection

// WithYear stamps absolute years on a copy of the projection.
func (p Projection) WithYear(startYear int) Projection {
	out := make(Projection, len(p))
	for i, m := range p {
		m.Year = startYear + m.YearOffset
		out[i] = m
	}
	return out
}

// ProjectionStatus tags the outcome of a projection request.
type ProjectionStatus string

const (
	ProjectionOK                  ProjectionStatus = "ok"
	ProjectionInsufficientHistory ProjectionStatus = "insufficient_history"
)

// ProjectionResult is returned by the projection use case.
type ProjectionResult struct {
	UserID       int64            `json:"user_id,omitempty"`
	Status       ProjectionStatus `json:"status"`
	Horizon      int              `json:"horizon"`
	CurrentMonth int              `json:"current_month"`
	Months       int              `json:"history_months"`
	Projection   Projection       `json:"projection,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// Sufficient reports whether a projection was produced.
func (r *ProjectionResult) Sufficient() bool {
	return r != nil && r.Status == ProjectionOK
}
