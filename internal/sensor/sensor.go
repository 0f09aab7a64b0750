// Package sensor derives the game state the agent learns from by sampling
// pixels at fixed page coordinates and classifying their colours.
package sensor

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/platform"
)

// ErrTooManyReadFailures is reported by Err once consecutive pixel reads
// have failed max_read_failures times.
var ErrTooManyReadFailures = errors.New("sensor: too many consecutive read failures")

// Observation is the state derived from one round of sensor reads.
type Observation struct {
	Height   float64
	Distance float64
	Color    core.RGB
}

// NumFeatures is the length of Observation.Features.
const NumFeatures = 5

// Features returns the feature vector (height, distance, r, g, b).
func (o Observation) Features() []float64 {
	c := o.Color.Floats()
	return []float64{o.Height, o.Distance, c[0], c[1], c[2]}
}

// IsDark reports whether every channel is strictly below max.
func IsDark(c core.RGB, max int) bool {
	return int(c.R) < max && int(c.G) < max && int(c.B) < max
}

// IsRed reports whether red is strictly above redMin and the other
// channels are strictly below darkMax.
func IsRed(c core.RGB, redMin, darkMax int) bool {
	return int(c.R) > redMin && int(c.G) < darkMax && int(c.B) < darkMax
}

// Sensor reads the game page. A failed read is treated as "no signal"
// for that probe; consecutive failures are counted and surface via Err.
type Sensor struct {
	screen   platform.Screen
	layout   config.Layout
	cfg      config.SensorConfig
	logger   *log.Logger
	failures int
	lastErr  error
}

// New creates a sensor over screen.
func New(screen platform.Screen, layout config.Layout, cfg config.SensorConfig, logger *log.Logger) *Sensor {
	return &Sensor{
		screen: screen,
		layout: layout,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Sensor) read(x, y int) (core.RGB, bool) {
	c, err := s.screen.ReadPixel(x, y)
	if err != nil {
		s.failures++
		s.lastErr = err
		s.logger.Debug("pixel read failed", "x", x, "y", y, "failures", s.failures, "err", err)
		if s.failures == s.cfg.MaxReadFailures {
			s.logger.Warn("pixel reads keep failing", "failures", s.failures, "err", err)
		}
		return core.RGB{}, false
	}
	s.failures = 0
	return c, true
}

// Err returns a non-nil error once the consecutive read failure limit is reached.
func (s *Sensor) Err() error {
	if s.cfg.MaxReadFailures > 0 && s.failures >= s.cfg.MaxReadFailures {
		return fmt.Errorf("%w (%d): %w", ErrTooManyReadFailures, s.failures, s.lastErr)
	}
	return nil
}

func (s *Sensor) lowDark(x int) bool {
	c, ok := s.read(x, s.layout.LowLaneY)
	return ok && IsDark(c, s.cfg.DarkMax)
}

func (s *Sensor) highRed(x int) bool {
	c, ok := s.read(x, s.layout.HighLaneY)
	return ok && IsRed(c, s.cfg.RedMin, s.cfg.DarkMax)
}

// ObstacleIncoming reports a dark pixel in the low lane or a red pixel in
// the high lane at the obstacle column.
func (s *Sensor) ObstacleIncoming() bool {
	low := s.lowDark(s.layout.ObstacleX)
	high := s.highRed(s.layout.ObstacleX)
	return low || high
}

// ObstacleHeight returns the obstacle height feature.
func (s *Sensor) ObstacleHeight() float64 {
	if s.cfg.Geometry != config.GeometryScan {
		return float64(s.layout.LowLaneY - s.layout.HighLaneY)
	}

	x := s.layout.ObstacleX
	if s.lowDark(x) {
		// Walk up the dark run starting at the low lane
		top := s.layout.LowLaneY
		for y := top - s.cfg.ScanStride; y >= 0; y -= s.cfg.ScanStride {
			c, ok := s.read(x, y)
			if !ok || !IsDark(c, s.cfg.DarkMax) {
				break
			}
			top = y
		}
		return float64(s.layout.LowLaneY - top + 1)
	}
	if s.highRed(x) {
		return float64(s.layout.LowLaneY - s.layout.HighLaneY)
	}
	return 0
}

// ObstacleDistance returns the distance from the player to the obstacle.
func (s *Sensor) ObstacleDistance() float64 {
	static := float64(s.layout.ObstacleX - s.layout.PlayerX)
	if s.cfg.Geometry != config.GeometryScan {
		return static
	}

	for x := s.cfg.ScanFrom; x <= s.layout.ObstacleX; x += s.cfg.ScanStride {
		if s.lowDark(x) || s.highRed(x) {
			return float64(x - s.layout.PlayerX)
		}
	}
	return static
}

// ColorFeatures samples the colour probe. A failed read yields black.
func (s *Sensor) ColorFeatures() core.RGB {
	c, _ := s.read(s.layout.ColorProbe.X, s.layout.ColorProbe.Y)
	return c
}

// IsGameOver reports whether every game-over probe shows exactly the
// banner grey. A failed read counts as not game over.
func (s *Sensor) IsGameOver() bool {
	if len(s.layout.GameOverProbes) == 0 {
		return false
	}
	gray := uint8(s.cfg.GameOverGray)
	for _, p := range s.layout.GameOverProbes {
		c, ok := s.read(p.X, p.Y)
		if !ok || !c.IsGray(gray) {
			return false
		}
	}
	return true
}

// Observe takes a full observation.
func (s *Sensor) Observe() Observation {
	return Observation{
		Height:   s.ObstacleHeight(),
		Distance: s.ObstacleDistance(),
		Color:    s.ColorFeatures(),
	}
}
