// Package report renders the episode history of a run as an HTML page of
// charts.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/dinobot/internal/storage"
)

// ErrNoEpisodes is returned when a run has nothing to plot.
var ErrNoEpisodes = errors.New("report: run has no episodes")

// Window is the number of episodes in the moving average.
const Window = 5

// Summary holds the reward statistics shown in the chart subtitle.
type Summary struct {
	Episodes   int
	Crashes    int
	MeanReward float64
	StdReward  float64
	MeanTicks  float64
}

// Summarize computes reward statistics over episodes.
func Summarize(episodes []storage.Episode) Summary {
	rewards := make([]float64, len(episodes))
	ticks := make([]float64, len(episodes))
	s := Summary{Episodes: len(episodes)}
	for i, e := range episodes {
		rewards[i] = e.TotalReward
		ticks[i] = float64(e.Ticks)
		if e.Crashed {
			s.Crashes++
		}
	}
	if len(episodes) == 0 {
		return s
	}
	s.MeanReward, s.StdReward = stat.MeanStdDev(rewards, nil)
	s.MeanTicks = stat.Mean(ticks, nil)
	return s
}

// MovingAverage returns the trailing mean of values over window entries.
// The first entries average over what is available. A window below one
// is treated as one.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		out[i] = stat.Mean(values[lo:i+1], nil)
	}
	return out
}

// Render writes the chart page for run to w.
func Render(w io.Writer, run storage.Run, episodes []storage.Episode) error {
	if len(episodes) == 0 {
		return fmt.Errorf("%w: %s", ErrNoEpisodes, run.RunID)
	}

	sum := Summarize(episodes)
	subtitle := fmt.Sprintf("%s / %s | %d episodes, %d crashes | reward %.1f ± %.1f | %.0f ticks avg",
		run.Backend, run.Representation, sum.Episodes, sum.Crashes, sum.MeanReward, sum.StdReward, sum.MeanTicks)

	xs := make([]string, len(episodes))
	rewards := make([]float64, len(episodes))
	for i, e := range episodes {
		xs[i] = strconv.Itoa(e.Episode)
		rewards[i] = e.TotalReward
	}

	page := components.NewPage()
	page.PageTitle = "dinobot " + run.RunID
	page.AddCharts(
		rewardChart(run, subtitle, xs, rewards),
		actionChart(xs, episodes),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

func rewardChart(run storage.Run, subtitle string, xs []string, rewards []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "dinobot " + run.RunID,
			Theme:     "shine",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Reward per episode",
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "total reward"}),
	)

	line.SetXAxis(xs).
		AddSeries("reward", lineData(rewards)).
		AddSeries(fmt.Sprintf("mean of %d", Window), lineData(MovingAverage(rewards, Window)))
	return line
}

func actionChart(xs []string, episodes []storage.Episode) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithTitleOpts(opts.Title{Title: "Actions per episode"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)

	jumps := make([]opts.BarData, len(episodes))
	ducks := make([]opts.BarData, len(episodes))
	explored := make([]opts.BarData, len(episodes))
	for i, e := range episodes {
		jumps[i] = opts.BarData{Value: e.Jumps}
		ducks[i] = opts.BarData{Value: e.Ducks}
		explored[i] = opts.BarData{Value: e.Explored}
	}

	bar.SetXAxis(xs).
		AddSeries("jumps", jumps).
		AddSeries("ducks", ducks).
		AddSeries("explored", explored)
	return bar
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}
