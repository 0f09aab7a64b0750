package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinobot/internal/report"
	"github.com/vovakirdan/dinobot/internal/storage"
)

var flagReportOut string

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Write an HTML chart of a run",
	Long: `Render the episodes of a recorded run as an HTML page with the
reward per episode, its moving average, and the jumps and ducks taken.

Examples:
  dinobot report 3f2a9c1e-6b0d-4a51-9d3e-0c8f5e2b7a41
  dinobot report 3f2a9c1e-6b0d-4a51-9d3e-0c8f5e2b7a41 -o run.html`,
	Args: cobra.ExactArgs(1),
	Run:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportOut, "output", "o", "", "Output file (default: dinobot-<run-id>.html)")
}

func runReport(cmd *cobra.Command, args []string) {
	exitOnError(writeReport(cmd, args[0]))
}

func writeReport(cmd *cobra.Command, runID string) error {
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

	path := flagReportOut
	if path == "" {
		path = fmt.Sprintf("dinobot-%s.html", runID)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Render(f, run, episodes); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
