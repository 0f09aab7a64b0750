package runner

import (
	"context"
	"time"

	"github.com/vovakirdan/dinobot/internal/agent"
	"github.com/vovakirdan/dinobot/internal/core"
)

// EpisodeResult summarises one finished episode.
type EpisodeResult struct {
	RunID       string
	Episode     int // 1-based
	Ticks       int
	Actions     int
	Jumps       int
	Ducks       int
	Explored    int
	TotalReward float64
	Crashed     bool
	Epsilon     float64 // Exploration rate used during the episode
	Duration    time.Duration
}

// EpisodeRecorder receives every finished episode.
type EpisodeRecorder interface {
	RecordEpisode(ctx context.Context, res EpisodeResult) error
}

// RecorderFunc adapts a function to EpisodeRecorder.
type RecorderFunc func(ctx context.Context, res EpisodeResult) error

// RecordEpisode calls f.
func (f RecorderFunc) RecordEpisode(ctx context.Context, res EpisodeResult) error {
	return f(ctx, res)
}

// count adds one tick's outcome to the running totals.
func (e *EpisodeResult) count(t TickResult) {
	e.Ticks++
	if !t.Acted {
		return
	}
	e.Actions++
	if t.Action == core.ActionDuck {
		e.Ducks++
	} else {
		e.Jumps++
	}
	if t.Decision == agent.Explored {
		e.Explored++
	}
	e.TotalReward += t.Reward
}
