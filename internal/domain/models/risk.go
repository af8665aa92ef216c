package models

// RiskLevel is the outcome of the risk heuristic.
type RiskLevel string

const (
	RiskHigh                RiskLevel = "high_risk"
	RiskLow                 RiskLevel = "low_risk"
	RiskInsufficientHistory RiskLevel = "insufficient_history"
)

// RiskSignals exposes which rules fired.
type RiskSignals struct {
	ScoreLow         bool `json:"score_low"`
	FrequentLateness bool `json:"frequent_lateness"`
	Inactivity       bool `json:"inactivity"`
	DecliningTrend   bool `json:"declining_trend"`
}

// Any reports whether at least one rule fired.
func (s RiskSignals) Any() bool {
	return s.ScoreLow || s.FrequentLateness || s.Inactivity || s.DecliningTrend
}

// RiskAssessment is the classifier verdict plus the analysed slice.
type RiskAssessment struct {
	UserID   int64           `json:"user_id,omitempty"`
	Level    RiskLevel       `json:"level"`
	Signals  RiskSignals     `json:"signals"`
	Analyzed []MonthlyRecord `json:"analyzed,omitempty"`
}
