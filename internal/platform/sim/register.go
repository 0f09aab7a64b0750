package sim

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/registry"
)

// Open creates a simulated page and its clock as a registry backend.
func Open(cfg config.Config, logger *log.Logger) (registry.Backend, error) {
	cfg = cfg.ForSim()
	g := New(cfg)
	logger.Debug("sim page ready",
		"size", []int{cfg.Sim.Width, cfg.Sim.Height},
		"seed", cfg.Sim.Seed,
		"player_x", cfg.Layout.PlayerX,
		"realtime", cfg.Sim.Realtime)
	return registry.Backend{Device: g, Clock: NewClock(g, cfg.Sim.Realtime), Config: cfg}, nil
}

// Register the backend with the registry
func init() {
	registry.Register("sim", "Simulated runner page", Open)
}
