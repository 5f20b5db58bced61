package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/refdash/internal/model"
)

const selectorWidth = 36

// metricItem implements list.Item for one selectable metric.
type metricItem struct {
	name   string
	latest string
}

func (i metricItem) Title() string       { return truncate(i.name, selectorWidth-4) }
func (i metricItem) Description() string { return "latest " + i.latest }
func (i metricItem) FilterValue() string { return i.name }

// metricItems lists the selectable metrics: those with at least one value.
func metricItems(snap model.Snapshot) []list.Item {
	rows := snap.Rows()
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = metricItem{name: r.Metric, latest: r.FormatValue()}
	}
	return items
}

func newSelector(items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("45")).
		BorderForeground(lipgloss.Color("45"))

	l := list.New(items, delegate, selectorWidth, selectorHeight(0))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.Styles.NoItems = subtleStyle
	return l
}

// selectorHeight sizes the option list to roughly a third of the window.
func selectorHeight(windowHeight int) int {
	h := windowHeight / 3
	if h < 6 {
		h = 6
	}
	if h > 14 {
		h = 14
	}
	return h
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "plot metric"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
