package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dinobot/internal/approx"
	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
)

func TestQTableDefaultsAndUpdate(t *testing.T) {
	table := NewQTable()
	assert.Equal(t, [core.NumActions]float64{}, table.Values())
	assert.Equal(t, 0, table.PreviousState())

	table.Update(4, core.ActionDuck, 2.5)
	assert.Equal(t, [core.NumActions]float64{0, 2.5}, table.ValuesOf(4))
	// Update does not move the previous state
	assert.Equal(t, [core.NumActions]float64{}, table.Values())

	table.SetPreviousState(4)
	assert.Equal(t, [core.NumActions]float64{0, 2.5}, table.Values())

	table.Update(4, core.ActionJump, -1)
	assert.Equal(t, [core.NumActions]float64{-1, 2.5}, table.ValuesOf(4))
	assert.Equal(t, 1, table.Len())
}

func newTableApprox() *TableApproximator {
	cfg := config.Default()
	return NewTableApproximator(NewQTable(), cfg.Agent.Table, cfg.Sensor)
}

func TestTableStateBuckets(t *testing.T) {
	a := newTableApprox()

	s1, err := a.State([]float64{125, 1315, 83, 83, 83})
	require.NoError(t, err)
	s2, err := a.State([]float64{130, 1390, 90, 90, 90})
	require.NoError(t, err)
	assert.Equal(t, s1, s2, "same buckets and colour class")

	red, err := a.State([]float64{125, 1315, 220, 50, 50})
	require.NoError(t, err)
	light, err := a.State([]float64{125, 1315, 247, 247, 247})
	require.NoError(t, err)
	assert.NotEqual(t, s1, red)
	assert.NotEqual(t, s1, light)
	assert.NotEqual(t, red, light)

	_, err = a.State([]float64{125, 1315})
	assert.ErrorIs(t, err, approx.ErrDimension)
}

func TestTableFitSetsTargets(t *testing.T) {
	a := newTableApprox()
	features := []float64{125, 1315, 83, 83, 83}

	require.NoError(t, a.Fit([]approx.Sample{
		{Features: features, Targets: []float64{0.2, 1.72}},
	}))
	q, err := a.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 1.72}, q)

	state, _ := a.State(features)
	assert.Equal(t, state, a.Table().PreviousState())

	// later samples for the same state win
	require.NoError(t, a.Fit([]approx.Sample{
		{Features: features, Targets: []float64{1, 1}},
		{Features: features, Targets: []float64{-100, 1}},
	}))
	q, err = a.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, []float64{-100, 1}, q)

	assert.ErrorIs(t, a.Fit(nil), approx.ErrEmptyBatch)
}
