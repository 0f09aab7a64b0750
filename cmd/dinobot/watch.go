package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/dinobot/internal/platform/sim"
	"github.com/vovakirdan/dinobot/internal/platform/tui"
	"github.com/vovakirdan/dinobot/internal/runner"
	"github.com/vovakirdan/dinobot/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a simulated training run",
	Long: `Train on the simulated page and show it live in the terminal:
the page with the sensor probes, the agent's exploration rate, the
episode in progress and the finished episodes.

Controls:
  P/Space  - Pause
  +/-      - Faster/slower
  ?        - Toggle help
  Q/Ctrl+C - Quit

Examples:
  dinobot watch
  dinobot watch --episodes 100 --difficulty easy
  dinobot watch --seed 7`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Episodes to play (default from config)")
	watchCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runWatch(cmd *cobra.Command, _ []string) {
	exitOnError(watch(cmd))
}

func watch(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(&cfg); err != nil {
		return err
	}
	cfg = cfg.ForSim()
	// The alt screen owns the terminal, so run logs are discarded.
	logger, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	var recorder runner.EpisodeRecorder
	var finish func(context.Context) error
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
		if err := store.StartRun(ctx, storage.Run{
			RunID:          runID,
			Backend:        "sim",
			Representation: cfg.Agent.Representation,
			Episodes:       cfg.Run.Episodes,
		}); err != nil {
			return err
		}
		recorder = store
		finish = func(ctx context.Context) error {
			return store.FinishRun(ctx, runID)
		}
	}

	// The view paces the run, so the page itself never sleeps.
	game := sim.New(cfg)
	r, err := runner.Build(cfg, game, sim.NewClock(game, false), logger, recorder, runID)
	if err != nil {
		return err
	}

	return tui.RunWatch(tui.WatchOptions{
		Context:  ctx,
		Runner:   r,
		Game:     game,
		RunID:    runID,
		Episodes: cfg.Run.Episodes,
		Width:    width,
		Height:   height,
		Finish:   finish,
	})
}
