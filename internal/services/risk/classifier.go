// Package risk flags users whose recent history looks unhealthy.
package risk

import (
	"CupoCast/internal/domain/models"
)

// Default thresholds.
const (
	DefaultLookback      = 3
	DefaultScoreFloor    = 600.0
	DefaultLateThreshold = 1
	// AnalyzedMonths is how much history is echoed back with an assessment.
	AnalyzedMonths = 12
)

// Classifier applies fixed rules over the last few months of raw history.
type Classifier struct {
	lookback      int
	scoreFloor    float64
	lateThreshold int
}

type Option func(*Classifier)

func WithScoreFloor(v float64) Option {
	return func(c *Classifier) { c.scoreFloor = v }
}

func WithLateThreshold(n int) Option {
	return func(c *Classifier) { c.lateThreshold = n }
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		lookback:      DefaultLookback,
		scoreFloor:    DefaultScoreFloor,
		lateThreshold: DefaultLateThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails; short histories yield RiskInsufficientHistory.
func (c *Classifier) Classify(records []models.MonthlyRecord) models.RiskAssessment {
	if len(records) < c.lookback {
		return models.RiskAssessment{Level: models.RiskInsufficientHistory, Analyzed: lastN(records, AnalyzedMonths)}
	}
	recent := records[len(records)-c.lookback:]
	s := models.RiskSignals{
		ScoreLow:         c.scoreLow(recent),
		FrequentLateness: c.lateness(recent),
		Inactivity:       inactive(recent),
		DecliningTrend:   declining(recent),
	}
	level := models.RiskLow
	if s.Any() {
		level = models.RiskHigh
	}
	return models.RiskAssessment{Level: level, Signals: s, Analyzed: lastN(records, AnalyzedMonths)}
}

func (c *Classifier) scoreLow(recent []models.MonthlyRecord) bool {
	for _, r := range recent {
		if r.Score < c.scoreFloor {
			return true
		}
	}
	return false
}

func (c *Classifier) lateness(recent []models.MonthlyRecord) bool {
	total := 0
	for _, r := range recent {
		total += r.LatePayments
	}
	return total > c.lateThreshold
}

func inactive(recent []models.MonthlyRecord) bool {
	for _, r := range recent {
		if r.Amount != 0 {
			return false
		}
	}
	return true
}

// declining compares the first and last months that had any borrowing.
func declining(recent []models.MonthlyRecord) bool {
	var first, last float64
	n := 0
	for _, r := range recent {
		if r.Amount <= 0 {
			continue
		}
		if n == 0 {
			first = r.Amount
		}
		last = r.Amount
		n++
	}
	return n >= 2 && last < first
}

func lastN(records []models.MonthlyRecord, n int) []models.MonthlyRecord {
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return append([]models.MonthlyRecord(nil), records...)
}
