package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/refdash/internal/model"
)

const (
	metricColWidth = 32
	valueColWidth  = 14
	maxTableHeight = 20
)

// tableRows converts the snapshot's visible series into table rows.
func tableRows(snap model.Snapshot) []table.Row {
	rows := snap.Rows()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{truncate(r.Metric, metricColWidth), r.FormatValue()}
	}
	return out
}

func tableHeight(snap model.Snapshot) int {
	h := len(snap.Rows()) + 1 // +1 for header
	if h > maxTableHeight {
		h = maxTableHeight
	}
	return h
}

func newTable(rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Metric", Width: metricColWidth},
			{Title: "Value", Width: valueColWidth},
		}),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("60")).
		BorderBottom(true).
		Bold(true)
	// unfocused table: no row highlight
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t
}
