package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/repository"
	"CupoCast/internal/services/features"
	"CupoCast/pkg/util"
)

// stubProjector returns the last window amount plus step*10 for each month.
type stubProjector struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *stubProjector) Forecast(_ context.Context, w features.Window, horizon, month int) (models.Projection, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	base := w.Tail().Amount
	out := make(models.Projection, horizon)
	for i := range out {
		m, off := util.MonthStep(month, i+1)
		out[i] = models.MonthProjection{Month: util.MonthName(m), YearOffset: off, EstimatedAmount: base + float64(10*(i+1))}
	}
	return out, nil
}

func (p *stubProjector) MaxHorizon() int { return 36 }

func (p *stubProjector) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type capturePublisher struct {
	mu          sync.Mutex
	projections []*models.ProjectionResult
	risks       []*models.RiskAssessment
}

func (p *capturePublisher) PublishProjection(_ context.Context, r *models.ProjectionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projections = append(p.projections, r)
	return nil
}

func (p *capturePublisher) PublishRisk(_ context.Context, r *models.RiskAssessment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.risks = append(p.risks, r)
	return nil
}

// seedUser creates a user with the given monthly amounts (score 700, one loan).
func seedUser(t *testing.T, store *repository.MemoryHistoryStore, email string, amounts ...float64) models.User {
	t.Helper()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, "user", email)
	require.NoError(t, err)
	entries := make([]models.HistoryEntry, len(amounts))
	for i, a := range amounts {
		entries[i] = models.HistoryEntry{UserID: u.ID, Month: i + 1, Amount: a, LoanCount: 1, Score: 700}
	}
	if len(entries) > 0 {
		require.NoError(t, store.AddHistory(ctx, entries))
	}
	return u
}
