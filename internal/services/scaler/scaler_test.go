package scaler

import (
	"os"
	"path/filepath"
	"testing"

	"CupoCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestTransformRoundTrip(t *testing.T) {
	s, err := New([]float64{200000}, []float64{125000})
	require.NoError(t, err)

	for _, v := range []float64{0, 1, 150000.55, 987654.321, -42} {
		z, err := s.Transform([]float64{v})
		require.NoError(t, err)
		back, err := s.InverseTransform(z)
		require.NoError(t, err)
		assert.InDelta(t, v, back[0], 1e-9)
	}
}

func TestTransformValues(t *testing.T) {
	s, err := New([]float64{1, 10}, []float64{2, 0})
	require.NoError(t, err)
	z, err := s.Transform([]float64{5, 13})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, z, "zero scale behaves as 1")
}

func TestDimensionMismatch(t *testing.T) {
	s, err := New([]float64{0, 0, 0}, []float64{1, 1, 1})
	require.NoError(t, err)

	_, err = s.Transform([]float64{1, 2})
	assert.ErrorIs(t, err, models.ErrScalerDimensionMismatch)
	_, err = s.InverseTransform([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, models.ErrScalerDimensionMismatch)
}

func TestNewRejectsBadParams(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
	_, err = New([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
}

func TestLoad(t *testing.T) {
	p := writeFile(t, "y.json", `{"mean":[100],"scale":[10]}`)
	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Dim())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)

	_, err = Load(writeFile(t, "bad.json", `{"mean":`))
	assert.ErrorIs(t, err, models.ErrRegressorUnavailable)
}

func TestNormalizer(t *testing.T) {
	in, err := New([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	out, err := New([]float64{1000}, []float64{500})
	require.NoError(t, err)

	n, err := NewNormalizer(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n.InputDim())

	z, err := n.Amount(2000)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, z, 1e-12)

	v, err := n.InverseAmount(z)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, v, 1e-9)

	_, err = NewNormalizer(in, in)
	assert.ErrorIs(t, err, models.ErrScalerDimensionMismatch)
}

func TestLoadNormalizer(t *testing.T) {
	x := writeFile(t, "x.json", `{"mean":[0,0,0],"scale":[1,1,1]}`)
	y := writeFile(t, "y.json", `{"mean":[5],"scale":[2]}`)
	n, err := LoadNormalizer(x, y)
	require.NoError(t, err)
	got, err := n.Features([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)
}
