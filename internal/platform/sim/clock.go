package sim

import (
	"context"
	"time"

	"github.com/vovakirdan/dinobot/internal/platform"
)

// Clock advances the simulated page instead of sleeping. A wait of d runs
// d / frame frames, at least one for any positive d. In realtime mode each
// frame also waits one frame of wall-clock time.
type Clock struct {
	game     *Game
	frame    time.Duration
	realtime bool
	wall     platform.Clock
}

// NewClock creates a clock driving game.
func NewClock(game *Game, realtime bool) *Clock {
	return &Clock{
		game:     game,
		frame:    game.cfg.FrameDuration(),
		realtime: realtime,
		wall:     platform.RealClock{},
	}
}

// Frames returns how many frames a wait of d advances.
func (c *Clock) Frames(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	n := int(d / c.frame)
	if n < 1 {
		n = 1
	}
	return n
}

// Wait advances the page by the frames in d, stopping early if ctx ends.
func (c *Clock) Wait(ctx context.Context, d time.Duration) error {
	n := c.Frames(d)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.realtime {
			if err := c.wall.Wait(ctx, c.frame); err != nil {
				return err
			}
		}
		c.game.Step()
	}
	return ctx.Err()
}
