package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/storage"
)

func TestBackendsListsRegisteredBackends(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	runBackends(cmd, nil)

	assert.Contains(t, out.String(), "sim")
	assert.Contains(t, out.String(), "x11")
}

func TestPrintRuns(t *testing.T) {
	var empty bytes.Buffer
	printRuns(&empty, nil)
	assert.Contains(t, empty.String(), "No runs recorded yet.")

	var out bytes.Buffer
	printRuns(&out, []storage.Run{{
		RunID:          "run-a",
		Backend:        "sim",
		Representation: "table",
		Episodes:       3,
		StartedAt:      time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}})
	assert.Contains(t, out.String(), "run-a")
	assert.Contains(t, out.String(), "table")
}

func TestApplyRunFlags(t *testing.T) {
	defer func() {
		flagEpisodes, flagRealtime, flagDifficulty = 0, false, ""
	}()

	cfg := config.Default()
	flagEpisodes = 42
	flagRealtime = true
	flagDifficulty = "fixed"
	require.NoError(t, applyRunFlags(&cfg))
	assert.Equal(t, 42, cfg.Run.Episodes)
	assert.True(t, cfg.Sim.Realtime)
	assert.False(t, cfg.Sim.Difficulty.Enabled)

	flagDifficulty = "brutal"
	assert.Error(t, applyRunFlags(&cfg))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"
	_, err := newLogger(cfg, &bytes.Buffer{})
	assert.Error(t, err)

	cfg.Log.Level = "debug"
	logger, err := newLogger(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
