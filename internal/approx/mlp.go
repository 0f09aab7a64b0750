package approx

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Adam hyperparameters.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// MLPConfig describes a single-hidden-layer network.
type MLPConfig struct {
	Inputs       int
	Hidden       int
	Outputs      int
	LearningRate float64
	Seed         int64
}

// param is one weight matrix with its Adam moments.
type param struct {
	w, m, v *mat.Dense
}

func newParam(r, c int) *param {
	return &param{
		w: mat.NewDense(r, c, nil),
		m: mat.NewDense(r, c, nil),
		v: mat.NewDense(r, c, nil),
	}
}

// MLP is a dense network: ReLU hidden layer, identity output, mean squared
// error loss, trained with Adam. Weights use Xavier-normal initialisation
// and biases start at zero.
type MLP struct {
	cfg    MLPConfig
	w1, b1 *param // Inputs x Hidden, 1 x Hidden
	w2, b2 *param // Hidden x Outputs, 1 x Outputs
	step   int
	loss   float64
}

// NewMLP creates a network with deterministic initial weights for cfg.Seed.
func NewMLP(cfg MLPConfig) (*MLP, error) {
	if cfg.Inputs <= 0 || cfg.Hidden <= 0 || cfg.Outputs <= 0 {
		return nil, fmt.Errorf("%w: layer sizes %d/%d/%d", ErrDimension, cfg.Inputs, cfg.Hidden, cfg.Outputs)
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("approx: learning rate must be positive, got %g", cfg.LearningRate)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := &MLP{
		cfg: cfg,
		w1:  newParam(cfg.Inputs, cfg.Hidden),
		b1:  newParam(1, cfg.Hidden),
		w2:  newParam(cfg.Hidden, cfg.Outputs),
		b2:  newParam(1, cfg.Outputs),
	}
	xavier(n.w1.w, rng)
	xavier(n.w2.w, rng)
	return n, nil
}

func xavier(w *mat.Dense, rng *rand.Rand) {
	fanIn, fanOut := w.Dims()
	std := math.Sqrt(2.0 / float64(fanIn+fanOut))
	w.Apply(func(_, _ int, _ float64) float64 {
		return rng.NormFloat64() * std
	}, w)
}

// addBias adds the row vector b to every row of z.
func addBias(z *mat.Dense, b *mat.Dense) {
	z.Apply(func(_, j int, v float64) float64 {
		return v + b.At(0, j)
	}, z)
}

// forward returns the hidden pre-activation, hidden activation and output
// for a batch of inputs.
func (n *MLP) forward(x *mat.Dense) (z1, a1, y *mat.Dense) {
	z1 = new(mat.Dense)
	z1.Mul(x, n.w1.w)
	addBias(z1, n.b1.w)

	a1 = new(mat.Dense)
	a1.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, z1)

	y = new(mat.Dense)
	y.Mul(a1, n.w2.w)
	addBias(y, n.b2.w)
	return z1, a1, y
}

// Predict returns one value per output for features.
func (n *MLP) Predict(features []float64) ([]float64, error) {
	if len(features) != n.cfg.Inputs {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(features), n.cfg.Inputs)
	}
	x := mat.NewDense(1, n.cfg.Inputs, append([]float64(nil), features...))
	_, _, y := n.forward(x)
	return mat.Row(nil, 0, y), nil
}

// Fit takes one Adam step on the mean squared error over the whole batch.
func (n *MLP) Fit(batch []Sample) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	rows := len(batch)
	x := mat.NewDense(rows, n.cfg.Inputs, nil)
	t := mat.NewDense(rows, n.cfg.Outputs, nil)
	for i, s := range batch {
		if len(s.Features) != n.cfg.Inputs || len(s.Targets) != n.cfg.Outputs {
			return fmt.Errorf("%w: sample %d has %d features and %d targets, want %d and %d",
				ErrDimension, i, len(s.Features), len(s.Targets), n.cfg.Inputs, n.cfg.Outputs)
		}
		x.SetRow(i, s.Features)
		t.SetRow(i, s.Targets)
	}

	z1, a1, y := n.forward(x)

	diff := new(mat.Dense)
	diff.Sub(y, t)
	count := float64(rows * n.cfg.Outputs)
	loss := mat.Sum(mulElem(diff, diff)) / count
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return fmt.Errorf("%w: loss %v", ErrDiverged, loss)
	}
	n.loss = loss

	// dL/dY
	dy := new(mat.Dense)
	dy.Scale(2/count, diff)

	dw2 := new(mat.Dense)
	dw2.Mul(a1.T(), dy)
	db2 := colSums(dy)

	da1 := new(mat.Dense)
	da1.Mul(dy, n.w2.w.T())
	dz1 := new(mat.Dense)
	dz1.Apply(func(i, j int, v float64) float64 {
		if z1.At(i, j) > 0 {
			return v
		}
		return 0
	}, da1)

	dw1 := new(mat.Dense)
	dw1.Mul(x.T(), dz1)
	db1 := colSums(dz1)

	n.step++
	n.adam(n.w1, dw1)
	n.adam(n.b1, db1)
	n.adam(n.w2, dw2)
	n.adam(n.b2, db2)
	return nil
}

func (n *MLP) adam(p *param, grad *mat.Dense) {
	c1 := 1 - math.Pow(adamBeta1, float64(n.step))
	c2 := 1 - math.Pow(adamBeta2, float64(n.step))
	lr := n.cfg.LearningRate

	p.m.Apply(func(i, j int, m float64) float64 {
		return adamBeta1*m + (1-adamBeta1)*grad.At(i, j)
	}, p.m)
	p.v.Apply(func(i, j int, v float64) float64 {
		g := grad.At(i, j)
		return adamBeta2*v + (1-adamBeta2)*g*g
	}, p.v)
	p.w.Apply(func(i, j int, w float64) float64 {
		mHat := p.m.At(i, j) / c1
		vHat := p.v.At(i, j) / c2
		return w - lr*mHat/(math.Sqrt(vHat)+adamEpsilon)
	}, p.w)
}

// Loss returns the loss of the most recent Fit, before its update.
func (n *MLP) Loss() float64 {
	return n.loss
}

// Steps returns how many Fit calls have updated the weights.
func (n *MLP) Steps() int {
	return n.step
}

func mulElem(a, b *mat.Dense) *mat.Dense {
	out := new(mat.Dense)
	out.MulElem(a, b)
	return out
}

func colSums(m *mat.Dense) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(1, c, nil)
	for j := 0; j < c; j++ {
		out.Set(0, j, mat.Sum(m.ColView(j)))
	}
	return out
}
