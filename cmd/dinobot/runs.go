package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/dinobot/internal/platform/tui"
	"github.com/vovakirdan/dinobot/internal/storage"
)

var (
	flagRunsLimit  int
	flagRunsBrowse bool
	flagRunsDelete bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show recorded training runs",
	Long: `Without arguments, list the most recent runs. With a run id, show
every episode of that run and its statistics.

Examples:
  dinobot runs
  dinobot runs --browse
  dinobot runs 3f2a9c1e-6b0d-4a51-9d3e-0c8f5e2b7a41
  dinobot runs 3f2a9c1e-6b0d-4a51-9d3e-0c8f5e2b7a41 --delete`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Number of runs to list")
	runsCmd.Flags().BoolVar(&flagRunsBrowse, "browse", false, "Browse runs interactively")
	runsCmd.Flags().BoolVar(&flagRunsDelete, "delete", false, "Delete the given run")
}

func runRuns(cmd *cobra.Command, args []string) {
	exitOnError(runs(cmd, args))
}

func runs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case flagRunsBrowse:
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		return tui.RunBrowser(ctx, store, width, height)

	case len(args) == 0:
		list, err := store.Runs(ctx, flagRunsLimit)
		if err != nil {
			return err
		}
		printRuns(out, list)
		return nil

	case flagRunsDelete:
		if err := store.DeleteRun(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted run %s\n", args[0])
		return nil

	default:
		return printRun(cmd, store, args[0])
	}
}

func printRuns(w io.Writer, list []storage.Run) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'dinobot play' or 'dinobot watch' to record one.")
		return
	}

	fmt.Fprintf(w, "  %-36s  %-7s  %-7s  %-8s  %-16s  %s\n", "Run", "Backend", "Repr", "Episodes", "Started", "Finished")
	fmt.Fprintf(w, "  %-36s  %-7s  %-7s  %-8s  %-16s  %s\n", "---", "-------", "----", "--------", "-------", "--------")
	for _, r := range list {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "  %-36s  %-7s  %-7s  %-8d  %-16s  %s\n",
			r.RunID, r.Backend, r.Representation, r.Episodes,
			r.StartedAt.Local().Format("2006-01-02 15:04"), finished)
	}
}

func printRun(cmd *cobra.Command, store *storage.Store, runID string) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	run, err := store.Run(ctx, runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		return fmt.Errorf("unknown run %q, run 'dinobot runs' to see recorded runs", runID)
	}
	if err != nil {
		return err
	}
	episodes, err := store.Episodes(ctx, runID)
	if err != nil {
		return err
	}
	stats, err := store.Stats(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run %s (%s, %s)\n", run.RunID, run.Backend, run.Representation)
	fmt.Fprintf(w, "Started %s, %d of %d episodes\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), stats.Episodes, run.Episodes)
	fmt.Fprintln(w)

	if len(episodes) == 0 {
		fmt.Fprintln(w, "No episodes recorded.")
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-6s  %-7s  %-5s  %-5s  %-8s  %-8s  %-7s  %s\n",
		"Ep", "Ticks", "Actions", "Jumps", "Ducks", "Explored", "Reward", "Epsilon", "Crashed")
	for _, e := range episodes {
		crashed := "no"
		if e.Crashed {
			crashed = "yes"
		}
		fmt.Fprintf(w, "  %-4d  %-6d  %-7d  %-5d  %-5d  %-8d  %-8.1f  %-7.3f  %s\n",
			e.Episode, e.Ticks, e.Actions, e.Jumps, e.Ducks, e.Explored, e.TotalReward, e.Epsilon, crashed)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Crashes: %d  Best: %.1f  Avg reward: %.1f  Avg ticks: %.1f\n",
		stats.Crashes, stats.BestReward, stats.AvgReward, stats.AvgTicks)
	return nil
}
