// Package approx provides trainable function approximators mapping a
// feature vector to one value per action.
package approx

import "errors"

var (
	// ErrDimension is returned when a vector has the wrong length.
	ErrDimension = errors.New("approx: dimension mismatch")
	// ErrEmptyBatch is returned by Fit when given no samples.
	ErrEmptyBatch = errors.New("approx: empty batch")
	// ErrDiverged is returned when training produces a non-finite loss.
	ErrDiverged = errors.New("approx: training diverged")
)

// Sample is one (features, targets) training pair.
type Sample struct {
	Features []float64
	Targets  []float64
}

// Approximator predicts per-action values and learns from batches.
type Approximator interface {
	Predict(features []float64) ([]float64, error)
	Fit(batch []Sample) error
}
