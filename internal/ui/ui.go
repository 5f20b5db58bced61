package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/refdash/internal/chart"
	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/errors"
	"github.com/Dicklesworthstone/refdash/internal/fetcher"
	"github.com/Dicklesworthstone/refdash/internal/logger"
	"github.com/Dicklesworthstone/refdash/internal/model"
)

// Placeholder is shown by the selector while nothing is selected.
const Placeholder = "Select a Metric"

type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseDone
	phaseFailed
)

// Model is the dashboard's presentation state. It owns the snapshot and the
// selection; the table, selector and chart are derived from them on render.
type Model struct {
	cfg    config.Config
	src    fetcher.Source
	log    logger.Logger
	colors chart.ColorFunc

	ctx       context.Context
	ctxCancel context.CancelFunc
	closed    bool

	phase    phase
	snap     model.Snapshot
	selected string
	err      error

	selector list.Model
	table    table.Model
	spinner  spinner.Model
	width    int
	height   int
}

func New(cfg config.Config, src fetcher.Source, log logger.Logger) *Model {
	if log == nil {
		log = logger.Noop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtleStyle

	return &Model{
		cfg:       cfg,
		src:       src,
		log:       log,
		colors:    chart.Colors(cfg.Chart.StableColors),
		ctx:       ctx,
		ctxCancel: cancel,
		snap:      model.Zero(),
		selector:  newSelector(nil),
		table:     newTable(nil),
		spinner:   sp,
		width:     120,
		height:    40,
	}
}

// Messages
type fetchedMsg struct {
	snap model.Snapshot
	err  error
}

// fetchCmd runs the one fetch of this dashboard's lifetime.
func (m *Model) fetchCmd() tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		snap, err := src.Fetch(ctx)
		return fetchedMsg{snap: snap, err: err}
	}
}

func (m *Model) Init() tea.Cmd {
	if m.phase != phaseIdle {
		return nil
	}
	m.phase = phaseLoading
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.selector.SetSize(selectorWidth, selectorHeight(m.height))
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			if item, ok := m.selector.SelectedItem().(metricItem); ok {
				m.Select(item.name)
			}
			return m, nil
		case key.Matches(msg, keys.Clear):
			m.Select("")
			return m, nil
		}
		var cmd tea.Cmd
		m.selector, cmd = m.selector.Update(msg)
		return m, cmd
	case fetchedMsg:
		m.applyFetch(msg)
	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyFetch stores a fetch result. Results arriving after Close are dropped.
func (m *Model) applyFetch(msg fetchedMsg) {
	if m.closed {
		return
	}
	if msg.err != nil {
		m.log.Error("fetching %s: %s", m.cfg.Endpoint, errors.Summary(msg.err))
		m.phase = phaseFailed
		m.err = msg.err
		return
	}
	m.phase = phaseDone
	m.snap = msg.snap
	m.selector.SetItems(metricItems(m.snap))
	m.table.SetRows(tableRows(m.snap))
	m.table.SetHeight(tableHeight(m.snap))
}

// Select replaces the selection. The name is not checked against the
// snapshot; an unknown name just charts nothing.
func (m *Model) Select(metric string) {
	m.selected = metric
	m.log.Debug("selected %q", metric)
}

// Selected returns the current selection, empty when none.
func (m *Model) Selected() string { return m.selected }

// Snapshot returns the snapshot the views are derived from.
func (m *Model) Snapshot() model.Snapshot { return m.snap }

// Close cancels an in-flight fetch and stops accepting its result.
func (m *Model) Close() {
	m.closed = true
	m.ctxCancel()
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	header := titleStyle.Render("Data Visualization")
	if m.phase == phaseLoading {
		header += "  " + m.spinner.View() + subtleStyle.Render(" loading "+m.cfg.Group)
	}

	current := m.selected
	if current == "" {
		current = subtleStyle.Render(Placeholder)
	}
	selectorCard := card("Select metric to view the line graph",
		"▾ "+current+"\n\n"+m.selector.View())
	tableCard := card("Metrics", m.table.View())

	sections := []string{
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, selectorCard, tableCard),
	}

	if m.selected != "" {
		spec := chart.Build(m.snap, m.selected, m.colors)
		w, h := m.chartSize()
		sections = append(sections, card(spec.Title(), chart.RenderTerminal(spec, w, h)))
	}

	if m.phase == phaseFailed && m.cfg.UI.ShowErrors {
		sections = append(sections, errorStyle.Render("fetch failed: "+errors.Summary(m.err)))
	}

	sections = append(sections, subtleStyle.Render(helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// chartSize fits the plot to the window, leaving room for borders and labels.
func (m *Model) chartSize() (w, h int) {
	w = m.width - 20
	if w < 20 {
		w = 20
	}
	h = m.height - selectorHeight(m.height) - 14
	if h < 4 {
		h = 4
	}
	if h > 16 {
		h = 16
	}
	return w, h
}

// Helpers
func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func helpLine() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Select, keys.Clear, keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return strings.Join(parts, " • ")
}

// RunTUI starts the Bubble Tea program and blocks until the user quits.
func RunTUI(cfg config.Config, src fetcher.Source, log logger.Logger) error {
	m := New(cfg, src, log)
	defer m.Close()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
