package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dinobot/internal/storage"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	assert.Equal(t, []float64{2, 3, 5, 7}, got)
	assert.Empty(t, MovingAverage(nil, 3))

	for _, window := range []int{0, -2} {
		assert.Equal(t, []float64{2, 4, 6, 8}, MovingAverage([]float64{2, 4, 6, 8}, window))
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]storage.Episode{
		{TotalReward: -90, Ticks: 10, Crashed: true},
		{TotalReward: 10, Ticks: 30},
	})
	assert.Equal(t, 2, s.Episodes)
	assert.Equal(t, 1, s.Crashes)
	assert.InDelta(t, -40, s.MeanReward, 1e-9)
	assert.InDelta(t, 20, s.MeanTicks, 1e-9)
	assert.Greater(t, s.StdReward, 0.0)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestRender(t *testing.T) {
	run := storage.Run{RunID: "abc123", Backend: "sim", Representation: "network"}
	episodes := []storage.Episode{
		{Episode: 1, TotalReward: -95, Jumps: 4, Ducks: 1, Crashed: true},
		{Episode: 2, TotalReward: 12, Jumps: 8, Ducks: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, run, episodes))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Reward per episode")
	assert.Contains(t, html, "Actions per episode")
	assert.Contains(t, html, "dinobot abc123")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, storage.Run{RunID: "none"}, nil)
	assert.ErrorIs(t, err, ErrNoEpisodes)
	assert.Zero(t, buf.Len())
}
