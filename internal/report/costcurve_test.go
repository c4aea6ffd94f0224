package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

func TestCostPoints(t *testing.T) {
	xys := CostPoints([]float64{3, 2, 1}, 1000)
	require.Len(t, xys, 3)
	assert.Equal(t, 1000.0, xys[0].X)
	assert.Equal(t, 3000.0, xys[2].X)
	assert.Equal(t, 1.0, xys[2].Y)
}

func TestSaveCostCurve(t *testing.T) {
	pngMagic := []byte("\x89PNG")

	for _, tc := range []struct {
		name  string
		costs []float64
	}{
		{"positive costs", []float64{10, 1, 0.1, 0.01}},
		{"reaches zero", []float64{1, 0.5, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "cost.png")
			require.NoError(t, SaveCostCurve(path, tc.costs, 10))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(raw, pngMagic))
		})
	}
}

func TestSaveCostCurveErrors(t *testing.T) {
	dir := t.TempDir()

	err := SaveCostCurve(filepath.Join(dir, "a.png"), nil, 10)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	err = SaveCostCurve(filepath.Join(dir, "b.png"), []float64{1}, 0)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	err = SaveCostCurve(filepath.Join(dir, "c.png"), []float64{1, math.NaN()}, 1)
	var nie *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &nie))
}
