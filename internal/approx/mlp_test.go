package approx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMLP(t *testing.T, lr float64) *MLP {
	t.Helper()
	n, err := NewMLP(MLPConfig{Inputs: 5, Hidden: 16, Outputs: 2, LearningRate: lr, Seed: 123})
	require.NoError(t, err)
	return n
}

func TestNewMLPRejectsBadConfig(t *testing.T) {
	_, err := NewMLP(MLPConfig{Inputs: 0, Hidden: 16, Outputs: 2, LearningRate: 0.1})
	assert.ErrorIs(t, err, ErrDimension)
	_, err = NewMLP(MLPConfig{Inputs: 5, Hidden: 16, Outputs: 2, LearningRate: 0})
	assert.Error(t, err)
}

func TestPredictDeterministicForSeed(t *testing.T) {
	a := newTestMLP(t, 0.1)
	b := newTestMLP(t, 0.1)
	features := []float64{125, 1315, 83, 83, 83}

	qa, err := a.Predict(features)
	require.NoError(t, err)
	qb, err := b.Predict(features)
	require.NoError(t, err)
	assert.Len(t, qa, 2)
	assert.Equal(t, qa, qb)
}

func TestPredictDimension(t *testing.T) {
	n := newTestMLP(t, 0.1)
	_, err := n.Predict([]float64{125, 1315})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestFitErrors(t *testing.T) {
	n := newTestMLP(t, 0.1)
	assert.ErrorIs(t, n.Fit(nil), ErrEmptyBatch)

	err := n.Fit([]Sample{{Features: []float64{1, 2, 3, 4, 5}, Targets: []float64{1}}})
	assert.ErrorIs(t, err, ErrDimension)

	err = n.Fit([]Sample{{Features: []float64{1, 2, 3, 4, 5}, Targets: []float64{math.NaN(), 0}}})
	assert.ErrorIs(t, err, ErrDiverged)
	assert.Equal(t, 0, n.Steps())
}

func TestFitSingleStepReducesLoss(t *testing.T) {
	n := newTestMLP(t, 1e-4)
	batch := []Sample{{Features: []float64{0.5, -0.2, 0.1, 0.3, 0.9}, Targets: []float64{1, -1}}}

	require.NoError(t, n.Fit(batch))
	before := n.Loss()
	require.NoError(t, n.Fit(batch))
	assert.Less(t, n.Loss(), before)
	assert.Equal(t, 2, n.Steps())
}

func TestFitLearnsBatch(t *testing.T) {
	n := newTestMLP(t, 0.01)
	batch := []Sample{
		{Features: []float64{0.1, 0.2, 0.0, 0.5, 1.0}, Targets: []float64{0.3, -0.1}},
		{Features: []float64{0.9, 0.1, 1.0, 0.0, 0.2}, Targets: []float64{1.0, 0.8}},
		{Features: []float64{0.4, 0.7, 0.3, 0.3, 0.3}, Targets: []float64{1.1, -0.3}},
	}

	require.NoError(t, n.Fit(batch))
	first := n.Loss()
	for i := 0; i < 300; i++ {
		require.NoError(t, n.Fit(batch))
	}
	assert.Less(t, n.Loss(), first/2)
}

func TestRawPixelScaleStaysFinite(t *testing.T) {
	// Unscaled features at the default learning rate
	n := newTestMLP(t, 0.1)
	batch := []Sample{
		{Features: []float64{125, 1315, 83, 83, 83}, Targets: []float64{0.2, 1.72}},
		{Features: []float64{125, 1315, 247, 247, 247}, Targets: []float64{-100, 0.5}},
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, n.Fit(batch))
	}
	q, err := n.Predict(batch[0].Features)
	require.NoError(t, err)
	for _, v := range q {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}
