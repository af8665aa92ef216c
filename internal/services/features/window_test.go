package features

import (
	"testing"

	"CupoCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordsWithAmounts(amounts ...float64) []models.MonthlyRecord {
	out := make([]models.MonthlyRecord, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, models.MonthlyRecord{
			Loaned:       a > 0,
			Amount:       a,
			Score:        700,
			TermMonths:   models.DefaultTermMonths,
			BankPartners: true,
		})
	}
	return out
}

func TestBuildWindowAlwaysTwelve(t *testing.T) {
	for n := 0; n <= 30; n++ {
		amounts := make([]float64, n)
		for i := range amounts {
			amounts[i] = float64(i + 1)
		}
		w := BuildWindow(recordsWithAmounts(amounts...))
		require.Len(t, w, WindowSize, "n=%d", n)
		require.NoError(t, w.Validate())

		kept := n
		if kept > WindowSize {
			kept = WindowSize
		}
		pad := WindowSize - kept
		for i := 0; i < pad; i++ {
			assert.Equal(t, models.PaddingRecord(), w[i], "n=%d idx=%d", n, i)
		}
		// real records keep chronological order and end with the newest
		for i := pad; i < WindowSize; i++ {
			want := float64(n - (WindowSize - 1 - i))
			assert.Equal(t, want, w[i].Amount, "n=%d idx=%d", n, i)
		}
	}
}

func TestBuildWindowEmpty(t *testing.T) {
	w := BuildWindow(nil)
	require.Len(t, w, WindowSize)
	for _, r := range w {
		assert.Equal(t, 0.0, r.Amount)
		assert.Equal(t, models.DefaultTermMonths, r.TermMonths)
		assert.False(t, r.BankPartners)
	}
}

func TestBuildWindowDoesNotAliasInput(t *testing.T) {
	in := recordsWithAmounts(1, 2, 3)
	w := BuildWindow(in)
	w[WindowSize-1].Amount = 99
	assert.Equal(t, 3.0, in[2].Amount)
}

func TestFlattenCanonicalOrder(t *testing.T) {
	w := BuildWindow([]models.MonthlyRecord{{
		Loaned: true, Amount: 150000, Score: 680, LatePayments: 2, TermMonths: 9, BankPartners: true,
	}})
	v := w.Flatten()
	require.Len(t, v, VectorSize)
	assert.Equal(t, []float64{1, 150000, 680, 2, 9, 1}, v[VectorSize-6:])
	assert.Equal(t, []float64{0, 0, 0, 0, 6, 0}, v[:6])
}

func TestSlideKeepsLength(t *testing.T) {
	w := BuildWindow(recordsWithAmounts(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12))
	next := w.Tail().WithAmount(13)
	s := w.Slide(next)
	require.Len(t, s, WindowSize)
	assert.Equal(t, 2.0, s[0].Amount)
	assert.Equal(t, 13.0, s.Tail().Amount)
	assert.Equal(t, 1.0, w[0].Amount, "original window must not change")
}

func TestValidateRejectsWrongLength(t *testing.T) {
	err := Window(recordsWithAmounts(1, 2)).Validate()
	assert.ErrorIs(t, err, models.ErrScalerDimensionMismatch)
}
