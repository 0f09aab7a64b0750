// dinobot trains a bot to play a side-scrolling dino runner by reading a few
// screen pixels and pressing keys.
//
// Usage:
//
//	dinobot play              - Train against the live page (x11) or the simulator
//	dinobot watch             - Watch a simulated training run in the terminal
//	dinobot serve             - Let SSH clients watch their own simulated runs
//	dinobot runs [run-id]     - List recorded runs, or the episodes of one run
//	dinobot report <run-id>   - Write an HTML chart of a run
//	dinobot backends          - List platform backends
//	dinobot config            - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config YAML overlaid on the defaults
//	--db <path>         - Run history database (default: ~/.dinobot/runs.db)
//	--seed <value>      - Seed for the simulated page and the agent
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/storage"

	// Import backends to register them
	_ "github.com/vovakirdan/dinobot/internal/platform/sim"
	_ "github.com/vovakirdan/dinobot/internal/platform/x11"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dinobot",
	Short: "dinobot - learn to play the dino runner from screen pixels",
	Long: `dinobot watches a handful of pixels of a dino runner page, decides
whether to jump or duck when an obstacle comes close, and learns from the
outcome with epsilon-greedy Q-learning.

Available commands:
  play      - Train against the live page or the simulator
  watch     - Watch a simulated training run in the terminal
  serve     - Start SSH server for spectators
  runs      - List recorded runs
  report    - Chart a recorded run as HTML
  backends  - List platform backends
  config    - Print the effective configuration

Examples:
  dinobot play --backend x11
  dinobot play --backend sim --episodes 50
  dinobot watch --difficulty hard
  dinobot runs
  dinobot report 3f2a9c1e -o run.html`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run history database (default from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Seed for the simulated page and the agent")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(backendsCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the config and applies the global flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Sim.Seed = flagSeed
		cfg.Agent.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// newLogger creates the command logger writing to w.
func newLogger(cfg config.Config, w io.Writer) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "dinobot",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// openStore opens the run history. A failure is logged and the command
// continues without history.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open run database", "path", cfg.Storage.Path, "error", err)
		return nil
	}
	return store
}

// exitOnError prints err and exits with status 1.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
