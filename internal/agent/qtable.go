package agent

import (
	"fmt"

	"github.com/vovakirdan/dinobot/internal/approx"
	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/sensor"
)

// QTable stores one value per action for each discrete state.
// Unseen states read as zero.
type QTable struct {
	values        map[int][core.NumActions]float64
	previousState int
}

// NewQTable creates an empty table.
func NewQTable() *QTable {
	return &QTable{values: make(map[int][core.NumActions]float64)}
}

// Values returns the values of the previous state.
func (t *QTable) Values() [core.NumActions]float64 {
	return t.values[t.previousState]
}

// ValuesOf returns the values of state.
func (t *QTable) ValuesOf(state int) [core.NumActions]float64 {
	return t.values[state]
}

// PreviousState returns the last state the table was trained on.
func (t *QTable) PreviousState() int {
	return t.previousState
}

// SetPreviousState records state as the previous state.
func (t *QTable) SetPreviousState(state int) {
	t.previousState = state
}

// Update sets the value of one action in state.
func (t *QTable) Update(state int, action core.Action, value float64) {
	v := t.values[state]
	v[action] = value
	t.values[state] = v
}

// Len returns the number of states with stored values.
func (t *QTable) Len() int {
	return len(t.values)
}

// Colour classes used when discretizing.
const (
	colorOther = iota
	colorDark
	colorRed
	numColorClasses
)

// maxDistanceBuckets bounds the distance component of a state id.
const maxDistanceBuckets = 1000

// TableApproximator adapts a QTable to the Approximator interface by
// bucketing features into a state id. Fit overwrites entries with the
// targets rather than blending.
type TableApproximator struct {
	table   *QTable
	buckets config.TableConfig
	sensor  config.SensorConfig
}

// NewTableApproximator creates a table-backed approximator.
func NewTableApproximator(table *QTable, buckets config.TableConfig, sc config.SensorConfig) *TableApproximator {
	return &TableApproximator{table: table, buckets: buckets, sensor: sc}
}

// Table returns the underlying table.
func (a *TableApproximator) Table() *QTable {
	return a.table
}

// State maps a feature vector to its discrete state id.
func (a *TableApproximator) State(features []float64) (int, error) {
	if len(features) != sensor.NumFeatures {
		return 0, fmt.Errorf("%w: got %d features, want %d", approx.ErrDimension, len(features), sensor.NumFeatures)
	}
	height := int(features[0] / a.buckets.HeightBucket)
	distance := core.Clamp(int(features[1]/a.buckets.DistanceBucket), 0, maxDistanceBuckets-1)

	c := core.RGB{R: channel(features[2]), G: channel(features[3]), B: channel(features[4])}
	class := colorOther
	switch {
	case sensor.IsDark(c, a.sensor.DarkMax):
		class = colorDark
	case sensor.IsRed(c, a.sensor.RedMin, a.sensor.DarkMax):
		class = colorRed
	}
	return (height*maxDistanceBuckets+distance)*numColorClasses + class, nil
}

func channel(v float64) uint8 {
	return uint8(core.Clamp(int(v), 0, 255))
}

// Predict returns the stored values for the features' state.
func (a *TableApproximator) Predict(features []float64) ([]float64, error) {
	state, err := a.State(features)
	if err != nil {
		return nil, err
	}
	v := a.table.ValuesOf(state)
	return v[:], nil
}

// Fit writes each sample's targets into its state, in batch order.
func (a *TableApproximator) Fit(batch []approx.Sample) error {
	if len(batch) == 0 {
		return approx.ErrEmptyBatch
	}
	for i, s := range batch {
		if len(s.Targets) != core.NumActions {
			return fmt.Errorf("%w: sample %d has %d targets", approx.ErrDimension, i, len(s.Targets))
		}
		state, err := a.State(s.Features)
		if err != nil {
			return err
		}
		for action, v := range s.Targets {
			a.table.Update(state, core.Action(action), v)
		}
		a.table.SetPreviousState(state)
	}
	return nil
}
