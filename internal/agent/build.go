package agent

import (
	"fmt"

	"github.com/vovakirdan/dinobot/internal/approx"
	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/sensor"
)

// NewApproximator builds the approximator selected by agent.representation.
func NewApproximator(cfg config.Config) (approx.Approximator, error) {
	switch cfg.Agent.Representation {
	case config.RepresentationNetwork:
		return approx.NewMLP(approx.MLPConfig{
			Inputs:       sensor.NumFeatures,
			Hidden:       cfg.Agent.Hidden,
			Outputs:      core.NumActions,
			LearningRate: cfg.Agent.LearningRate,
			Seed:         cfg.Agent.Seed,
		})
	case config.RepresentationTable:
		return NewTableApproximator(NewQTable(), cfg.Agent.Table, cfg.Sensor), nil
	default:
		return nil, fmt.Errorf("agent: unknown representation %q", cfg.Agent.Representation)
	}
}
