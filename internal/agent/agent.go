// Package agent implements the epsilon-greedy learning agent: action
// selection over an approximator's per-action values and the one-step
// Q-learning targets it trains on.
package agent

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/vovakirdan/dinobot/internal/approx"
	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/sensor"
)

// ErrBadPrediction is returned when the approximator does not produce one
// finite value per action.
var ErrBadPrediction = errors.New("agent: bad prediction")

// Decision records how an action was chosen.
type Decision int

const (
	Greedy   Decision = iota // Argmax of the predicted values
	Explored                 // Uniformly random
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Explored {
		return "explored"
	}
	return "greedy"
}

// Agent owns the approximator, the pending batch and the exploration rate.
// It is not safe for concurrent use.
type Agent struct {
	approx  approx.Approximator
	cfg     config.AgentConfig
	rng     *rand.Rand
	batch   Batch
	epsilon float64
}

// New creates an agent. rng drives exploration.
func New(a approx.Approximator, cfg config.AgentConfig, rng *rand.Rand) *Agent {
	return &Agent{
		approx:  a,
		cfg:     cfg,
		rng:     rng,
		epsilon: cfg.ExplorationRate,
	}
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// EndEpisode applies the exploration decay, floored at exploration_min.
func (a *Agent) EndEpisode() {
	a.epsilon *= a.cfg.ExplorationDecay
	if a.epsilon < a.cfg.ExplorationMin {
		a.epsilon = a.cfg.ExplorationMin
	}
}

// Predict returns the approximator's value for each action.
func (a *Agent) Predict(features []float64) ([]float64, error) {
	q, err := a.approx.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("agent: predict: %w", err)
	}
	if len(q) != core.NumActions {
		return nil, fmt.Errorf("%w: %d values, want %d", ErrBadPrediction, len(q), core.NumActions)
	}
	if floats.HasNaN(q) {
		return nil, fmt.Errorf("%w: %v", ErrBadPrediction, q)
	}
	return q, nil
}

// ChooseAction picks a uniformly random action with probability epsilon,
// otherwise the action with the larger predicted value. Jump wins ties.
func (a *Agent) ChooseAction(obs sensor.Observation, epsilon float64) (core.Action, Decision, error) {
	if a.rng.Float64() < epsilon {
		return core.Action(a.rng.Intn(core.NumActions)), Explored, nil
	}
	q, err := a.Predict(obs.Features())
	if err != nil {
		return core.ActionJump, Greedy, err
	}
	if q[core.ActionDuck] > q[core.ActionJump] {
		return core.ActionDuck, Greedy, nil
	}
	return core.ActionJump, Greedy, nil
}

// Targets returns q with the action's entry replaced by
// reward + discount * max(q).
func Targets(q []float64, action core.Action, reward, discount float64) []float64 {
	targets := append([]float64(nil), q...)
	targets[action] = reward + discount*floats.Max(q)
	return targets
}

// RecordTransition appends the training pair for taking action in the
// state obs and receiving reward.
func (a *Agent) RecordTransition(obs sensor.Observation, action core.Action, reward float64) error {
	if !action.Valid() {
		return fmt.Errorf("agent: invalid action %d", action)
	}
	features := obs.Features()
	q, err := a.Predict(features)
	if err != nil {
		return err
	}
	a.batch.Append(approx.Sample{
		Features: features,
		Targets:  Targets(q, action, reward, a.cfg.Discount),
	})
	return nil
}

// BatchLen returns the number of transitions waiting to be fitted.
func (a *Agent) BatchLen() int {
	return a.batch.Len()
}

// TrainOnBatch fits the approximator to every pending transition in one
// call and clears the batch, even if the fit fails.
func (a *Agent) TrainOnBatch() error {
	samples := a.batch.Samples()
	a.batch.Clear()
	if len(samples) == 0 {
		return nil
	}
	if err := a.approx.Fit(samples); err != nil {
		return fmt.Errorf("agent: fit %d samples: %w", len(samples), err)
	}
	return nil
}

// Reward returns the crash reward on game over, otherwise the survive reward.
func (a *Agent) Reward(gameOver bool) float64 {
	if gameOver {
		return a.cfg.Rewards.Crash
	}
	return a.cfg.Rewards.Survive
}
