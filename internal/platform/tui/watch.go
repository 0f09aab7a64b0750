package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/platform/sim"
	"github.com/vovakirdan/dinobot/internal/runner"
)

// Watch layout constants
const (
	defaultTickRate = 30
	maxSpeed        = 64
	historyRows     = 5
	chromeLines     = 8 + historyRows // Header, status, progress, table border and help
	minGameHeight   = 6
)

// WatchOptions configures a WatchModel.
type WatchOptions struct {
	Context  context.Context // Cancelling it stops the run; defaults to Background
	Runner   *runner.Runner
	Game     *sim.Game
	RunID    string
	Episodes int
	TickRate int // UI frames per second
	Width    int
	Height   int
	// Finish is called once when the run completes. Optional.
	Finish func(ctx context.Context) error
}

// WatchModel is the Bubble Tea model of the live training view. Every UI
// frame advances the runner by speed steps on the simulated page and draws
// the page, the agent's state and the finished episodes.
type WatchModel struct {
	ctx      context.Context
	runner   *runner.Runner
	game     *sim.Game
	runID    string
	episodes int
	tickRate int
	finish   func(ctx context.Context) error

	screen   *core.Screen
	table    table.Model
	progress progress.Model
	help     help.Model
	keys     WatchKeyMap

	width    int
	height   int
	speed    int
	paused   bool
	done     bool
	quitting bool
	err      error
	last     runner.TickResult // Last tick in which the agent acted
}

// NewWatchModel creates the live view for a run on the simulated page.
func NewWatchModel(opts WatchOptions) WatchModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = defaultTickRate
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	m := WatchModel{
		ctx:      opts.Context,
		runner:   opts.Runner,
		game:     opts.Game,
		runID:    opts.RunID,
		episodes: opts.Episodes,
		tickRate: opts.TickRate,
		finish:   opts.Finish,
		screen:   core.NewScreen(opts.Width, gameHeight(opts.Height)),
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     DefaultWatchKeyMap(),
		width:    opts.Width,
		height:   opts.Height,
		speed:    1,
	}
	m.table = newEpisodeTable(opts.Width)
	m.progress.Width = core.Max(opts.Width-4, 10)
	return m
}

func gameHeight(height int) int {
	return core.Max(height-chromeLines, minGameHeight)
}

func newEpisodeTable(width int) table.Model {
	columns := []table.Column{
		{Title: "Ep", Width: 5},
		{Title: "Ticks", Width: 7},
		{Title: "Actions", Width: 8},
		{Title: "Jumps", Width: 6},
		{Title: "Ducks", Width: 6},
		{Title: "Explored", Width: 9},
		{Title: "Reward", Width: 9},
		{Title: "Crashed", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(historyRows),
		table.WithWidth(core.Max(width-2, 20)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// episodeRow formats one finished episode for the history table.
func episodeRow(res runner.EpisodeResult) table.Row {
	crashed := "no"
	if res.Crashed {
		crashed = "yes"
	}
	return table.Row{
		fmt.Sprintf("%d", res.Episode),
		fmt.Sprintf("%d", res.Ticks),
		fmt.Sprintf("%d", res.Actions),
		fmt.Sprintf("%d", res.Jumps),
		fmt.Sprintf("%d", res.Ducks),
		fmt.Sprintf("%d", res.Explored),
		fmt.Sprintf("%.1f", res.TotalReward),
		crashed,
	}
}

// Init starts the tick loop.
func (m WatchModel) Init() tea.Cmd {
	return tickCmd(m.tickRate)
}

// Update handles messages and updates the model state.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Faster):
		m.speed = core.Min(m.speed*2, maxSpeed)
	case key.Matches(msg, m.keys.Slower):
		m.speed = core.Max(m.speed/2, 1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleResize processes window resize events.
func (m WatchModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.screen.Resize(msg.Width, gameHeight(msg.Height))
	m.progress.Width = core.Max(msg.Width-4, 10)
	m.table.SetWidth(core.Max(msg.Width-2, 20))
	m.help.Width = msg.Width
	return m, nil
}

// handleTick advances the run by speed steps.
func (m WatchModel) handleTick() (tea.Model, tea.Cmd) {
	if m.done || m.err != nil {
		return m, nil
	}
	if m.paused {
		return m, tickCmd(m.tickRate)
	}

	for range m.speed {
		ev, err := m.runner.Advance(m.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				m.quitting = true
				return m, tea.Quit
			}
			m.err = err
			return m, nil
		}

		switch ev.Kind {
		case runner.Ticked:
			if ev.Tick.Acted {
				m.last = ev.Tick
			}
		case runner.EpisodeFinished:
			m.table.SetRows(append(m.table.Rows(), episodeRow(ev.Result)))
			m.table.GotoBottom()
		case runner.Done:
			m.done = true
			if m.finish != nil {
				if err := m.finish(m.ctx); err != nil {
					m.err = err
				}
			}
			return m, nil
		}
	}

	return m, tickCmd(m.tickRate)
}

// Done reports whether every episode has been played.
func (m WatchModel) Done() bool {
	return m.done
}

// Err returns the error that stopped the run, if any.
func (m WatchModel) Err() error {
	return m.err
}

// Paused reports whether the run is paused.
func (m WatchModel) Paused() bool {
	return m.paused
}

// Speed returns the runner steps taken per UI frame.
func (m WatchModel) Speed() int {
	return m.speed
}

// View renders the current state to a string for display.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "DINOBOT"
	if m.runID != "" {
		title = fmt.Sprintf("DINOBOT  run %s", shortID(m.runID))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	m.game.Render(m.screen)
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")

	finished := len(m.runner.Results())
	percent := 0.0
	if m.episodes > 0 {
		percent = float64(finished) / float64(m.episodes)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %d/%d", finished, m.episodes)))
	b.WriteString("\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.done:
		b.WriteString(titleStyle.Render("Run finished"))
		b.WriteString("\n")
	case m.paused:
		b.WriteString(titleStyle.Render("Paused"))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// statusLine summarises the episode in progress.
func (m WatchModel) statusLine() string {
	cur := m.runner.Current()
	state := m.game.State()

	last := "-"
	if m.last.Acted {
		last = fmt.Sprintf("%s (%s)", m.last.Action, m.last.Decision)
	}
	return fmt.Sprintf("Episode %d/%d  eps %.3f  ticks %d  actions %d  reward %.1f  score %d  last %s  x%d",
		m.runner.Episode(), m.episodes,
		m.runner.Epsilon(),
		cur.Ticks, cur.Actions, cur.TotalReward,
		state.Score,
		last,
		m.speed)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunWatch runs the live view until the user quits. It returns the error
// that stopped the run, if any.
func RunWatch(opts WatchOptions) error {
	p := tea.NewProgram(NewWatchModel(opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(WatchModel); ok {
		return m.Err()
	}
	return nil
}
