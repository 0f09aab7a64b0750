package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/registry"
	"github.com/vovakirdan/dinobot/internal/runner"
	"github.com/vovakirdan/dinobot/internal/storage"
)

var (
	flagBackend    string
	flagEpisodes   int
	flagRealtime   bool
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Train the agent",
	Long: `Run the training loop: every tick the bot checks for an incoming
obstacle, jumps or ducks, and learns from the reward.

Backends:
  x11  - Read pixels from and send keys to the X display (the browser page
         must be open at the configured coordinates)
  sim  - Built-in simulated page, runs as fast as the CPU allows unless
         --realtime is set

Difficulty options (sim only):
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Press Ctrl+C to stop; the episode in progress is discarded.

Examples:
  dinobot play
  dinobot play --backend sim --episodes 200
  dinobot play --backend sim --realtime --difficulty hard
  dinobot play --config ./my-dinobot.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagBackend, "backend", "x11", "Platform backend (see 'dinobot backends')")
	playCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Episodes to play (default from config)")
	playCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Run the simulated page at wall-clock speed")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

// applyRunFlags applies the training flags shared by play and watch.
func applyRunFlags(cfg *config.Config) error {
	if flagEpisodes > 0 {
		cfg.Run.Episodes = flagEpisodes
	}
	if flagRealtime {
		cfg.Sim.Realtime = true
	}
	preset, err := config.ParseDifficultyPreset(flagDifficulty)
	if err != nil {
		return err
	}
	config.ApplyPreset(&cfg.Sim, preset)
	return cfg.Validate()
}

func runPlay(cmd *cobra.Command, _ []string) {
	exitOnError(play(cmd))
}

func play(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(&cfg); err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	if !registry.Exists(flagBackend) {
		return fmt.Errorf("unknown backend %q, run 'dinobot backends' to see available backends", flagBackend)
	}
	backend, err := registry.Open(flagBackend, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Device.Close()
	cfg = backend.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	var recorder runner.EpisodeRecorder
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
		if err := store.StartRun(ctx, storage.Run{
			RunID:          runID,
			Backend:        flagBackend,
			Representation: cfg.Agent.Representation,
			Episodes:       cfg.Run.Episodes,
		}); err != nil {
			return err
		}
		recorder = store
	}

	r, err := runner.Build(cfg, backend.Device, backend.Clock, logger, recorder, runID)
	if err != nil {
		return err
	}
	if err := r.Run(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	if store != nil {
		if err := store.FinishRun(ctx, runID); err != nil {
			return err
		}
		if best, ok, err := store.BestEpisode(ctx, runID); err == nil && ok {
			logger.Info("best episode", "run", runID, "episode", best.Episode, "reward", best.TotalReward, "ticks", best.Ticks)
		}
	}
	return nil
}
