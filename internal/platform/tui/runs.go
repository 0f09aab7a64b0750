package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/storage"
)

// Run browser layout constants
const (
	maxRuns        = 100
	runTableHeight = 8
)

// RunsModel is the Bubble Tea model for browsing stored runs. The upper
// table lists runs; the lower one shows the episodes of the selected run.
type RunsModel struct {
	ctx      context.Context
	store    *storage.Store
	runs     []storage.Run
	runTable table.Model
	episodes table.Model
	stats    storage.RunStats
	help     help.Model
	keys     RunsKeyMap
	width    int
	height   int
	err      error
	quitting bool
}

// NewRunsModel creates a run browser backed by store.
func NewRunsModel(ctx context.Context, store *storage.Store, width, height int) RunsModel {
	m := RunsModel{
		ctx:    ctx,
		store:  store,
		help:   help.New(),
		keys:   DefaultRunsKeyMap(),
		width:  width,
		height: height,
	}
	m.runTable = newRunTable(width)
	m.episodes = newEpisodeTable(width)
	m.episodes.SetHeight(m.episodeHeight())

	m.loadRuns()
	return m
}

func newRunTable(width int) table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 10},
		{Title: "Backend", Width: 8},
		{Title: "Repr", Width: 8},
		{Title: "Episodes", Width: 9},
		{Title: "Started", Width: 17},
		{Title: "Finished", Width: 9},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(runTableHeight),
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

func (m RunsModel) episodeHeight() int {
	return core.Max(m.height-runTableHeight-10, 3)
}

// loadRuns loads the most recent runs and the episodes of the first.
func (m *RunsModel) loadRuns() {
	runs, err := m.store.Runs(m.ctx, maxRuns)
	if err != nil {
		m.err = err
		return
	}
	m.runs = runs

	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = "yes"
		}
		rows[i] = table.Row{
			shortID(r.RunID),
			r.Backend,
			r.Representation,
			fmt.Sprintf("%d", r.Episodes),
			r.StartedAt.Local().Format("Jan 02 15:04:05"),
			finished,
		}
	}
	m.runTable.SetRows(rows)
	m.runTable.GotoTop()
	m.loadEpisodes()
}

// loadEpisodes loads the episodes of the selected run.
func (m *RunsModel) loadEpisodes() {
	run, ok := m.Selected()
	if !ok {
		m.episodes.SetRows(nil)
		m.stats = storage.RunStats{}
		return
	}

	episodes, err := m.store.Episodes(m.ctx, run.RunID)
	if err != nil {
		m.err = err
		return
	}
	stats, err := m.store.Stats(m.ctx, run.RunID)
	if err != nil {
		m.err = err
		return
	}
	m.stats = stats

	rows := make([]table.Row, len(episodes))
	for i, e := range episodes {
		crashed := "no"
		if e.Crashed {
			crashed = "yes"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", e.Episode),
			fmt.Sprintf("%d", e.Ticks),
			fmt.Sprintf("%d", e.Actions),
			fmt.Sprintf("%d", e.Jumps),
			fmt.Sprintf("%d", e.Ducks),
			fmt.Sprintf("%d", e.Explored),
			fmt.Sprintf("%.1f", e.TotalReward),
			crashed,
		}
	}
	m.episodes.SetRows(rows)
	m.episodes.GotoTop()
}

// Selected returns the run under the cursor.
func (m RunsModel) Selected() (storage.Run, bool) {
	i := m.runTable.Cursor()
	if i < 0 || i >= len(m.runs) {
		return storage.Run{}, false
	}
	return m.runs[i], true
}

// Init initializes the run browser.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the run browser.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			before := m.runTable.Cursor()
			m.runTable, cmd = m.runTable.Update(msg)
			if m.runTable.Cursor() != before {
				m.loadEpisodes()
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runTable.SetWidth(core.Max(msg.Width-2, 20))
		m.episodes.SetWidth(core.Max(msg.Width-2, 20))
		m.episodes.SetHeight(m.episodeHeight())
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// View renders the run browser.
func (m RunsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("TRAINING RUNS", m.width)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	if len(m.runs) == 0 {
		b.WriteString(dimStyle.Render("No runs recorded yet. Start one with 'dinobot play'."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(m.help.View(m.keys)))
		return b.String()
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))

	b.WriteString(boxStyle.Render(m.runTable.View()))
	b.WriteString("\n")

	if run, ok := m.Selected(); ok {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%s  episodes %d  crashes %d  best %.1f  avg reward %.1f  avg ticks %.1f",
			shortID(run.RunID), m.stats.Episodes, m.stats.Crashes,
			m.stats.BestReward, m.stats.AvgReward, m.stats.AvgTicks)))
		b.WriteString("\n")
	}
	b.WriteString(boxStyle.Render(m.episodes.View()))
	b.WriteString("\n")

	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunBrowser runs the stored-run browser until the user quits.
func RunBrowser(ctx context.Context, store *storage.Store, width, height int) error {
	p := tea.NewProgram(NewRunsModel(ctx, store, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
