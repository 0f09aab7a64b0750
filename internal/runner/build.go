package runner

import (
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinobot/internal/agent"
	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/platform"
	"github.com/vovakirdan/dinobot/internal/sensor"
)

// Build wires a sensor, an agent and a runner from cfg on top of a device
// and clock. recorder may be nil.
func Build(cfg config.Config, dev platform.Device, clock platform.Clock, logger *log.Logger, recorder EpisodeRecorder, runID string) (*Runner, error) {
	a, err := agent.NewApproximator(cfg)
	if err != nil {
		return nil, err
	}
	return New(Options{
		Sensor:   sensor.New(dev, cfg.Layout, cfg.Sensor, logger),
		Agent:    agent.New(a, cfg.Agent, rand.New(rand.NewSource(cfg.Agent.Seed))),
		Keyboard: dev,
		Clock:    clock,
		Config:   cfg,
		Logger:   logger,
		Recorder: recorder,
		RunID:    runID,
	})
}
