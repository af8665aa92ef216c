package features

import (
	"fmt"

	"CupoCast/internal/domain/models"
)

// WindowSize is the number of months fed to the regressor.
const WindowSize = 12

// VectorSize is the flattened model input length.
const VectorSize = WindowSize * models.FeatureCount

// Window is a chronological run of monthly records, oldest first.
type Window []models.MonthlyRecord

// BuildWindow keeps the last WindowSize records and left-pads short histories
// with padding records. Real records are never reordered or padded at the tail.
func BuildWindow(records []models.MonthlyRecord) Window {
	if len(records) > WindowSize {
		records = records[len(records)-WindowSize:]
	}
	w := make(Window, 0, WindowSize)
	for i := len(records); i < WindowSize; i++ {
		w = append(w, models.PaddingRecord())
	}
	return append(w, records...)
}

// Validate checks the fixed-length invariant.
func (w Window) Validate() error {
	if len(w) != WindowSize {
		return fmt.Errorf("%w: window has %d records, want %d", models.ErrScalerDimensionMismatch, len(w), WindowSize)
	}
	return nil
}

// Flatten concatenates every record's features in canonical order.
func (w Window) Flatten() []float64 {
	out := make([]float64, 0, len(w)*models.FeatureCount)
	for _, r := range w {
		f := r.Features()
		out = append(out, f[:]...)
	}
	return out
}

// Tail returns the most recent record.
func (w Window) Tail() models.MonthlyRecord {
	return w[len(w)-1]
}

// Slide drops the oldest record and appends next, returning a new window.
func (w Window) Slide(next models.MonthlyRecord) Window {
	out := make(Window, 0, len(w))
	out = append(out, w[1:]...)
	return append(out, next)
}
