package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/fetcher"
	"github.com/Dicklesworthstone/refdash/internal/logger"
	"github.com/Dicklesworthstone/refdash/internal/model"
)

const scenarioBody = `{"current":{"data":{"TK1":{
	"TK1_temp":{"times":[1,2,3],"values":[10,20,30]},
	"TK1_empty":{"times":[],"values":[]},
	"OTHER":{"times":[1],"values":[5]}
}}}}`

func scenarioSource(t *testing.T) fetcher.Source {
	t.Helper()
	snap, err := fetcher.Normalize([]byte(scenarioBody), "TK1", "TK1_")
	require.NoError(t, err)
	return fetcher.SourceFunc(func(context.Context) (model.Snapshot, error) { return snap, nil })
}

func failingSource() fetcher.Source {
	return fetcher.SourceFunc(func(context.Context) (model.Snapshot, error) {
		return model.Zero(), errors.New("dial tcp: connection refused")
	})
}

// runFetch executes the fetch command Init schedules and feeds the result back.
func runFetch(t *testing.T, m *Model) {
	t.Helper()
	msg := m.fetchCmd()()
	m.Update(msg)
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestNew(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)

	assert.Equal(t, phaseIdle, m.phase)
	assert.False(t, m.Snapshot().Loaded)
	assert.Empty(t, m.Selected())
	assert.Contains(t, m.View(), Placeholder)
}

func TestInit_StartsLoadingOnce(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)

	require.NotNil(t, m.Init())
	assert.Equal(t, phaseLoading, m.phase)
	assert.Nil(t, m.Init(), "a second Init must not fetch again")
}

func TestScenario_EndToEnd(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)
	m.Init()
	runFetch(t, m)

	assert.Equal(t, phaseDone, m.phase)
	assert.True(t, m.Snapshot().Loaded)
	assert.Len(t, m.Snapshot().Series, 2, "empty series stays in the snapshot")

	rows := m.table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "TK1_temp", rows[0][0])
	assert.Equal(t, "30", rows[0][1])

	items := m.selector.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "TK1_temp", items[0].(metricItem).name)

	view := m.View()
	assert.Contains(t, view, Placeholder)
	assert.NotContains(t, view, "Line Graph for")

	m.Update(enter())
	assert.Equal(t, "TK1_temp", m.Selected())

	view = m.View()
	assert.Contains(t, view, "Line Graph for TK1_temp")
	assert.Contains(t, view, "Times")
	assert.NotContains(t, view, "OTHER")
	assert.NotContains(t, view, "TK1_empty")
}

func TestFetchFailure_SilentByDefault(t *testing.T) {
	log := logger.NewBufferLogger()
	m := New(config.Default(), failingSource(), log)
	m.Init()

	assert.NotPanics(t, func() { runFetch(t, m) })

	assert.Equal(t, phaseFailed, m.phase)
	assert.False(t, m.Snapshot().Loaded)
	assert.Empty(t, m.table.Rows())
	assert.Empty(t, m.selector.Items())
	assert.True(t, log.HasLevel("error"))
	assert.NotContains(t, m.View(), "fetch failed")
}

func TestFetchFailure_VisibleWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.UI.ShowErrors = true
	m := New(cfg, failingSource(), nil)
	m.Init()
	runFetch(t, m)

	assert.Contains(t, m.View(), "fetch failed: dial tcp: connection refused")
}

func TestSelectionNeverRefetches(t *testing.T) {
	calls := 0
	src := fetcher.SourceFunc(func(context.Context) (model.Snapshot, error) {
		calls++
		return fetcher.Normalize([]byte(scenarioBody), "TK1", "TK1_")
	})
	m := New(config.Default(), src, nil)
	m.Init()
	runFetch(t, m)

	for _, name := range []string{"TK1_temp", "", "TK1_temp", "TK1_unknown"} {
		m.Select(name)
		_ = m.View()
	}
	_, cmd := m.Update(enter())
	assert.Nil(t, cmd)
	assert.Equal(t, 1, calls)
}

func TestSelectUnknownMetric(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)
	m.Init()
	runFetch(t, m)

	m.Select("TK1_unknown")
	view := m.View()
	assert.Contains(t, view, "Line Graph for TK1_unknown")
	assert.Contains(t, view, "no data to plot")
}

func TestClearSelection(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)
	m.Init()
	runFetch(t, m)
	m.Select("TK1_temp")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.Selected())
	assert.NotContains(t, m.View(), "Line Graph for")
}

func TestEnterBeforeLoadIsNoop(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)
	m.Init()

	m.Update(enter())
	assert.Empty(t, m.Selected())
}

func TestQuit_DropsLateResult(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)
	m.Init()
	pending := m.fetchCmd()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.ctx.Err(), "quitting cancels the fetch context")

	m.Update(pending())
	assert.False(t, m.Snapshot().Loaded)
	assert.Equal(t, phaseLoading, m.phase)
}

func TestQuit_CancelsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	src := fetcher.SourceFunc(func(ctx context.Context) (model.Snapshot, error) {
		close(started)
		<-ctx.Done()
		return model.Zero(), ctx.Err()
	})
	m := New(config.Default(), src, nil)
	m.Init()

	result := make(chan tea.Msg, 1)
	cmd := m.fetchCmd()
	go func() { result <- cmd() }()
	<-started

	m.Close()
	msg := <-result
	assert.ErrorIs(t, msg.(fetchedMsg).err, context.Canceled)
}

func TestWindowResize(t *testing.T) {
	m := New(config.Default(), scenarioSource(t), nil)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})

	assert.Equal(t, 200, m.width)
	assert.Equal(t, 60, m.height)
	w, h := m.chartSize()
	assert.Equal(t, 180, w)
	assert.LessOrEqual(t, h, 16)
}

func TestMetricItems(t *testing.T) {
	snap, err := fetcher.Normalize([]byte(scenarioBody), "TK1", "TK1_")
	require.NoError(t, err)

	items := metricItems(snap)
	require.Len(t, items, 1)
	var item list.Item = items[0]
	assert.Equal(t, "TK1_temp", item.FilterValue())
	assert.Equal(t, "latest 30", item.(metricItem).Description())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "TK1_ver…", truncate("TK1_verylongname", 8))
}
