// Package runner drives the control loop: each tick it asks the sensor
// whether an obstacle is coming, lets the agent act on the observation,
// trains on the transition, and waits the fixed interval.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinobot/internal/agent"
	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/platform"
	"github.com/vovakirdan/dinobot/internal/sensor"
)

// TickResult describes one loop iteration.
type TickResult struct {
	Acted       bool // An obstacle was seen and an action taken
	Observation sensor.Observation
	Action      core.Action
	Decision    agent.Decision
	Reward      float64
	GameOver    bool
}

// EventKind identifies what an Advance call did.
type EventKind int

const (
	EpisodeStarted EventKind = iota
	Ticked
	EpisodeFinished
	Done
)

// Event is returned by Advance.
type Event struct {
	Kind    EventKind
	Episode int
	Tick    TickResult
	Result  EpisodeResult // Set for EpisodeFinished
}

// Options holds the runner's collaborators.
type Options struct {
	Sensor   *sensor.Sensor
	Agent    *agent.Agent
	Keyboard platform.Keyboard
	Clock    platform.Clock
	Config   config.Config
	Logger   *log.Logger
	Recorder EpisodeRecorder // Optional
	RunID    string
}

// pending is the last action taken in the current episode.
type pending struct {
	obs    sensor.Observation
	action core.Action
}

// Runner owns the control loop. It is not safe for concurrent use.
type Runner struct {
	sensor   *sensor.Sensor
	agent    *agent.Agent
	keyboard platform.Keyboard
	clock    platform.Clock
	cfg      config.RunConfig
	keys     [core.NumActions]core.Key
	logger   *log.Logger
	recorder EpisodeRecorder
	runID    string

	episode int // Current episode, 0 before the first reset
	running bool
	stats   EpisodeResult
	started time.Time
	last    *pending
	results []EpisodeResult
	now     func() time.Time
}

// New creates a runner.
func New(opts Options) (*Runner, error) {
	jump, err := opts.Config.Keys.JumpKey()
	if err != nil {
		return nil, fmt.Errorf("runner: jump key: %w", err)
	}
	duck, err := opts.Config.Keys.DuckKey()
	if err != nil {
		return nil, fmt.Errorf("runner: duck key: %w", err)
	}
	return &Runner{
		sensor:   opts.Sensor,
		agent:    opts.Agent,
		keyboard: opts.Keyboard,
		clock:    opts.Clock,
		cfg:      opts.Config.Run,
		keys:     [core.NumActions]core.Key{core.ActionJump: jump, core.ActionDuck: duck},
		logger:   opts.Logger,
		recorder: opts.Recorder,
		runID:    opts.RunID,
		now:      time.Now,
	}, nil
}

// Results returns the finished episodes so far.
func (r *Runner) Results() []EpisodeResult {
	return r.results
}

// Current returns the running totals of the episode in progress.
func (r *Runner) Current() EpisodeResult {
	return r.stats
}

// Episode returns the current 1-based episode number.
func (r *Runner) Episode() int {
	return r.episode
}

// Epsilon returns the agent's current exploration rate.
func (r *Runner) Epsilon() float64 {
	return r.agent.Epsilon()
}

// Run plays every configured episode. Cancelling ctx stops the run
// cleanly and returns nil; the episode in progress is not recorded.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("run started", "run", r.runID, "episodes", r.cfg.Episodes, "interval", r.cfg.TickInterval)
	for {
		ev, err := r.Advance(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				r.logger.Info("run interrupted", "run", r.runID, "episode", r.episode, "finished", len(r.results))
				return nil
			}
			return err
		}
		if ev.Kind == Done {
			r.logger.Info("run finished", "run", r.runID, "episodes", len(r.results))
			return nil
		}
	}
}

// Advance performs the next step of the run: starting an episode, one tick
// followed by the wait, or finishing an episode.
func (r *Runner) Advance(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	if !r.running {
		if r.episode >= r.cfg.Episodes {
			return Event{Kind: Done, Episode: r.episode}, nil
		}
		if err := r.ResetEpisode(ctx); err != nil {
			return Event{}, err
		}
		return Event{Kind: EpisodeStarted, Episode: r.episode}, nil
	}

	tick, err := r.Tick(ctx)
	if err != nil {
		return Event{}, err
	}

	crashed := tick.GameOver && r.cfg.EndOnGameOver
	if crashed || (r.cfg.MaxTicks > 0 && r.stats.Ticks >= r.cfg.MaxTicks) {
		res, err := r.FinishEpisode(ctx, crashed)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EpisodeFinished, Episode: res.Episode, Tick: tick, Result: res}, nil
	}

	if err := r.clock.Wait(ctx, r.cfg.TickInterval); err != nil {
		return Event{}, err
	}
	return Event{Kind: Ticked, Episode: r.episode, Tick: tick}, nil
}

// ResetEpisode starts the next episode: taps jump to (re)start the game and
// waits one interval.
func (r *Runner) ResetEpisode(ctx context.Context) error {
	if err := platform.Tap(r.keyboard, r.keys[core.ActionJump]); err != nil {
		return fmt.Errorf("runner: reset game: %w", err)
	}
	if err := r.clock.Wait(ctx, r.cfg.TickInterval); err != nil {
		return err
	}
	r.episode++
	r.running = true
	r.last = nil
	r.started = r.now()
	r.stats = EpisodeResult{
		RunID:   r.runID,
		Episode: r.episode,
		Epsilon: r.agent.Epsilon(),
	}
	r.logger.Debug("episode started", "episode", r.episode, "epsilon", r.agent.Epsilon())
	return nil
}

// Tick runs one loop iteration without the wait.
//
// When an obstacle is incoming the agent acts on the observation taken just
// before the action, the reward is read after it, and the transition is
// fitted immediately. When episodes end on game over, a game over seen at
// the start of a tick ends the episode without acting; the crash reward is
// then credited to the last action taken.
func (r *Runner) Tick(ctx context.Context) (TickResult, error) {
	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}

	var res TickResult
	if r.cfg.EndOnGameOver && r.sensor.IsGameOver() {
		res.GameOver = true
		if r.last != nil {
			if err := r.learn(r.last.obs, r.last.action, r.agent.Reward(true)); err != nil {
				return TickResult{}, err
			}
			r.stats.TotalReward += r.agent.Reward(true)
			r.last = nil
		}
	} else if r.sensor.ObstacleIncoming() {
		obs := r.sensor.Observe()
		action, decision, err := r.agent.ChooseAction(obs, r.agent.Epsilon())
		if err != nil {
			return TickResult{}, fmt.Errorf("runner: choose action: %w", err)
		}
		if err := platform.Tap(r.keyboard, r.keys[action]); err != nil {
			return TickResult{}, fmt.Errorf("runner: perform %s: %w", action, err)
		}

		gameOver := r.sensor.IsGameOver()
		reward := r.agent.Reward(gameOver)
		if err := r.learn(obs, action, reward); err != nil {
			return TickResult{}, err
		}
		res = TickResult{
			Acted:       true,
			Observation: obs,
			Action:      action,
			Decision:    decision,
			Reward:      reward,
			GameOver:    gameOver,
		}
		r.last = &pending{obs: obs, action: action}
		if gameOver {
			r.last = nil
		}
		r.logger.Debug("acted",
			"episode", r.episode,
			"action", action,
			"decision", decision,
			"reward", reward,
			"height", obs.Height,
			"distance", obs.Distance,
			"color", obs.Color)
	}

	if err := r.sensor.Err(); err != nil {
		return TickResult{}, fmt.Errorf("runner: %w", err)
	}
	r.stats.count(res)
	return res, nil
}

func (r *Runner) learn(obs sensor.Observation, action core.Action, reward float64) error {
	if err := r.agent.RecordTransition(obs, action, reward); err != nil {
		return fmt.Errorf("runner: record transition: %w", err)
	}
	if err := r.agent.TrainOnBatch(); err != nil {
		return fmt.Errorf("runner: train: %w", err)
	}
	return nil
}

// FinishEpisode closes the current episode, reports it and applies the
// exploration decay.
func (r *Runner) FinishEpisode(ctx context.Context, crashed bool) (EpisodeResult, error) {
	res := r.stats
	res.Crashed = crashed
	res.Duration = r.now().Sub(r.started)
	r.running = false
	r.last = nil
	r.results = append(r.results, res)
	r.agent.EndEpisode()

	r.logger.Info("episode finished",
		"episode", res.Episode,
		"ticks", res.Ticks,
		"actions", res.Actions,
		"jumps", res.Jumps,
		"ducks", res.Ducks,
		"explored", res.Explored,
		"reward", res.TotalReward,
		"crashed", res.Crashed,
		"duration", res.Duration.Round(time.Millisecond))

	if r.recorder != nil {
		if err := r.recorder.RecordEpisode(ctx, res); err != nil {
			return res, fmt.Errorf("runner: record episode %d: %w", res.Episode, err)
		}
	}
	return res, nil
}
