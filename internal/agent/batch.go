package agent

import "github.com/vovakirdan/dinobot/internal/approx"

// Batch accumulates transitions between fits.
type Batch struct {
	samples []approx.Sample
}

// Append adds a sample to the end of the batch.
func (b *Batch) Append(s approx.Sample) {
	b.samples = append(b.samples, s)
}

// Len returns the number of pending samples.
func (b *Batch) Len() int {
	return len(b.samples)
}

// Samples returns the pending samples in insertion order.
func (b *Batch) Samples() []approx.Sample {
	return b.samples
}

// Clear drops all pending samples. The backing array is not reused, so
// slices returned by Samples stay valid.
func (b *Batch) Clear() {
	b.samples = nil
}
