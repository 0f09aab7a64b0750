package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/dinobot/internal/core"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var embedded Config
	require.NoError(t, yaml.Unmarshal(DefaultYAML(), &embedded))
	assert.Equal(t, Default(), embedded)
	assert.NoError(t, embedded.Validate())
}

func TestDefaultLayout(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1400, cfg.Layout.ObstacleX)
	assert.Equal(t, 640, cfg.Layout.LowLaneY)
	assert.Equal(t, 515, cfg.Layout.HighLaneY)
	assert.Equal(t, core.Point{X: 1400, Y: 635}, cfg.Layout.ColorProbe)
	assert.Equal(t, 85, cfg.Layout.PlayerX)
	assert.Len(t, cfg.Layout.GameOverProbes, 3)
	assert.Equal(t, 100*time.Millisecond, cfg.Run.TickInterval)
}

func TestLoadCustomPathOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("run:\n  episodes: 3\n  tick_interval: 250ms\nagent:\n  representation: table\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Run.Episodes)
	assert.Equal(t, 250*time.Millisecond, cfg.Run.TickInterval)
	assert.Equal(t, RepresentationTable, cfg.Agent.Representation)
	// untouched keys keep their defaults
	assert.Equal(t, 0.9, cfg.Agent.Discount)
	assert.Equal(t, "space", cfg.Keys.Jump)
}

func TestLoadMissingCustomPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad geometry", "sensor:\n  geometry: guess\n"},
		{"bad discount", "agent:\n  discount: 1.5\n"},
		{"bad exploration", "agent:\n  exploration_rate: -0.1\n"},
		{"bad representation", "agent:\n  representation: forest\n"},
		{"zero episodes", "run:\n  episodes: 0\n"},
		{"unknown key", "keys:\n  jump: enter\n"},
		{"no probes", "layout:\n  game_over_probes: []\n"},
		{"threshold range", "sensor:\n  dark_max: 300\n"},
		{"sim player past probe", "sim:\n  player_x: 1500\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestKeysResolve(t *testing.T) {
	cfg := Default()
	jump, err := cfg.Keys.JumpKey()
	require.NoError(t, err)
	duck, err := cfg.Keys.DuckKey()
	require.NoError(t, err)
	assert.Equal(t, core.KeySpace, jump)
	assert.Equal(t, core.KeyDown, duck)
}

func TestForSim(t *testing.T) {
	cfg := Default()
	cfg.Sensor.Geometry = GeometryScan

	s := cfg.ForSim()
	assert.Equal(t, cfg.Sim.PlayerX, s.Layout.PlayerX)
	assert.Equal(t, cfg.Sim.PlayerX+cfg.Sim.Player.DuckWidth, s.Sensor.ScanFrom)
	assert.NoError(t, s.Validate())
	assert.Equal(t, 85, cfg.Layout.PlayerX, "the original layout is untouched")

	cfg.Sim.PlayerX = 0
	assert.Equal(t, cfg, cfg.ForSim())
}

// At a 100ms tick every obstacle overlaps the probe column on at least one
// tick, and a jump clears the tallest cactus for its whole crossing.
func TestSimTuningFitsTick(t *testing.T) {
	cfg := Default()
	s := cfg.Sim
	frames := int(cfg.Run.TickInterval / s.FrameDuration())
	require.Equal(t, 6, frames)

	maxSpeed := int(s.Physics.BaseSpeed * (1 + s.Difficulty.Scaling.SpeedMultiplier))
	assert.Less(t, frames*maxSpeed, s.Obstacles.MinWidth)
	assert.Less(t, frames*maxSpeed, s.Obstacles.BirdWidth)

	peak := s.Physics.JumpImpulse * s.Physics.JumpImpulse / (2 * s.Physics.Gravity)
	assert.Greater(t, peak, float64(s.Obstacles.MaxHeight))
	assert.Less(t, peak, float64(s.GroundY-s.Obstacles.BirdTop), "a jump never clears a bird")
	birdBottom := s.Obstacles.BirdTop + s.Obstacles.BirdHeight
	assert.LessOrEqual(t, birdBottom, s.GroundY-s.Player.DuckHeight, "a duck passes under a bird")
}

func TestFrameDuration(t *testing.T) {
	assert.Equal(t, time.Second/60, SimConfig{FPS: 60}.FrameDuration())
	assert.Equal(t, time.Second/60, SimConfig{}.FrameDuration())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".dinobot", "runs.db"), ExpandHome("~/.dinobot/runs.db"))
	assert.Equal(t, "/tmp/runs.db", ExpandHome("/tmp/runs.db"))
}
