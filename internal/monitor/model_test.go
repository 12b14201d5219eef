package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source whose answers can be changed between polls.
type fakeSource struct {
	mu           sync.Mutex
	snapshot     *Snapshot
	metricsErr   error
	rows         []ProcessGroup
	processErr   error
	terminateErr error
	queries      []string
	terminated   []int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		snapshot: &Snapshot{
			Timestamp:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Host:          "web-01",
			CPU:           &CPUStat{Percent: 12.5},
			Memory:        &UsageStat{Percent: 40, Used: 4 << 30, Total: 10 << 30},
			Disk:          &UsageStat{Percent: 70, Used: 70 << 30, Total: 100 << 30},
			UptimeSeconds: 93784,
		},
		rows: sampleGroups(),
	}
}

func (f *fakeSource) Metrics(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	snap := *f.snapshot
	return &snap, nil
}

func (f *fakeSource) Processes(ctx context.Context, query string) ([]ProcessGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.rows, nil
}

func (f *fakeSource) Terminate(ctx context.Context, pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, pid)
	return f.terminateErr
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func newTestModel(t *testing.T, src Source) Model {
	t.Helper()
	m := NewModel(context.Background(), src, Options{
		APIURL: "http://localhost:5000",
		Logger: logger.NewBufferLogger(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func pressKey(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(t, m, msg)
}

// pollMetrics runs one metrics poll to completion.
func pollMetrics(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.pollMetrics()()
	m, _ = update(t, m, msg)
	return m
}

// pollProcesses runs one process poll to completion.
func pollProcesses(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.pollProcesses()()
	m, _ = update(t, m, msg)
	return m
}

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel(context.Background(), newFakeSource(), Options{})

	assert.Equal(t, DefaultMetricsInterval, m.opts.MetricsInterval)
	assert.Equal(t, DefaultProcessInterval, m.opts.ProcessInterval)
	assert.Equal(t, DefaultHistorySize, m.Series().Cap())
	assert.Equal(t, DefaultThresholds(), m.opts.Thresholds)
	assert.NotEmpty(t, m.SessionID())
	assert.Nil(t, m.Snapshot())
	assert.Equal(t, SortByCPU, m.Table().SortKey())
}

func TestNewModel_InitialQuery(t *testing.T) {
	m := NewModel(context.Background(), newFakeSource(), Options{Query: "java"})
	assert.Equal(t, "java", m.Table().Query())
	assert.Equal(t, "java", m.search.Value())
}

func TestInit_ReturnsCommands(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	assert.NotNil(t, m.Init())
}

func TestMetrics_SuccessAppendsAndSetsSnapshot(t *testing.T) {
	m := newTestModel(t, newFakeSource())

	m = pollMetrics(t, m)

	require.NotNil(t, m.Snapshot())
	assert.Equal(t, "web-01", m.Snapshot().Host)
	assert.Equal(t, 1, m.Series().Len())
	assert.Empty(t, m.MetricsError())
}

func TestMetrics_FailureKeepsStateThenRecovers(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)

	for i := 0; i < 3; i++ {
		m = pollMetrics(t, m)
	}
	require.Equal(t, 3, m.Series().Len())
	before := m.Snapshot()

	src.set(func(f *fakeSource) {
		f.metricsErr = errors.New(errors.ErrHTTP, "HTTP 500", "")
	})
	m = pollMetrics(t, m)

	assert.Equal(t, 3, m.Series().Len(), "failed poll must not append")
	assert.Same(t, before, m.Snapshot(), "failed poll must not touch the snapshot")
	assert.Equal(t, "HTTP 500", m.MetricsError())
	assert.Contains(t, m.View(), "Error: HTTP 500")

	src.set(func(f *fakeSource) { f.metricsErr = nil })
	m = pollMetrics(t, m)

	assert.Equal(t, 4, m.Series().Len())
	assert.Empty(t, m.MetricsError())
	assert.NotContains(t, m.View(), "Error:")
}

func TestMetrics_StaleResponseDropped(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)

	older := m.pollMetrics()
	newer := m.pollMetrics()

	src.set(func(f *fakeSource) { f.snapshot.Host = "newer" })
	newMsg := newer()
	src.set(func(f *fakeSource) { f.snapshot.Host = "older" })
	oldMsg := older()

	m, _ = update(t, m, newMsg)
	m, _ = update(t, m, oldMsg)

	assert.Equal(t, "newer", m.Snapshot().Host)
	assert.Equal(t, 1, m.Series().Len())

	log, ok := m.log.(*logger.BufferLogger)
	require.True(t, ok)
	assert.True(t, log.Contains("dropping stale metrics response"))
}

func TestMetrics_TickReschedulesAndPolls(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	_, cmd := update(t, m, metricsTickMsg(time.Now()))
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	assert.Len(t, batch, 2)
}

func TestProcesses_SuccessReplacesRows(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	m = pollProcesses(t, m)

	assert.Equal(t, []string{"postgres", "nginx", "sshd"}, names(m.Table().SortedRows()))
	assert.Len(t, m.lines, 3)
}

func TestProcesses_NotOKKeepsRowsWithoutBanner(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)
	m = pollProcesses(t, m)

	src.set(func(f *fakeSource) {
		f.processErr = errors.New(errors.ErrAPI, "Process endpoint reported ok=false", "")
	})
	m = pollProcesses(t, m)

	assert.Len(t, m.Table().Rows(), 3)
	assert.Empty(t, m.MetricsError())

	log := m.log.(*logger.BufferLogger)
	assert.True(t, log.Contains("soft failure"))
	assert.False(t, log.HasLevel("warn"))
}

func TestProcesses_HTTPFailureKeepsRows(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)
	m = pollProcesses(t, m)

	src.set(func(f *fakeSource) {
		f.processErr = errors.New(errors.ErrHTTP, "HTTP 502", "")
	})
	m = pollProcesses(t, m)

	assert.Len(t, m.Table().Rows(), 3)
	assert.Empty(t, m.MetricsError(), "process failures never set the metrics banner")

	view := m.View()
	assert.Contains(t, view, "postgres", "stale rows stay on screen")
	assert.NotContains(t, view, "HTTP 502")
	assert.NotContains(t, view, "failed")

	log := m.log.(*logger.BufferLogger)
	assert.True(t, log.HasLevel("warn"))
	assert.True(t, log.Contains("HTTP 502"))
}

func TestProcesses_QueryChangeDropsInFlight(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)

	inFlight := m.pollProcesses()

	m, _ = pressKey(t, m, "/")
	require.True(t, m.searching)
	m, cmd := pressKey(t, m, "n")
	require.NotNil(t, cmd)
	assert.Equal(t, "n", m.Table().Query())

	// The response for the old query arrives late and is ignored
	m, _ = update(t, m, inFlight())
	assert.Nil(t, m.Table().Rows())

	m = pollProcesses(t, m)
	assert.Len(t, m.Table().Rows(), 3)
	assert.Contains(t, src.queries, "n")
}

func TestProcesses_OldTickDropped(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	oldGen := *m.processGen

	m, _ = pressKey(t, m, "/")
	m, _ = pressKey(t, m, "x")
	require.NotEqual(t, oldGen, *m.processGen)

	_, cmd := update(t, m, processTickMsg{gen: oldGen})
	assert.Nil(t, cmd)

	_, cmd = update(t, m, processTickMsg{gen: *m.processGen})
	assert.NotNil(t, cmd)
}

func TestSearch_EscLeavesQuery(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	m, _ = pressKey(t, m, "/")
	m, _ = pressKey(t, m, "p")
	m, _ = pressKey(t, m, "g")
	m, _ = pressKey(t, m, "esc")

	assert.False(t, m.searching)
	assert.Equal(t, "pg", m.Table().Query())

	// Keys act on the table again
	m, _ = pressKey(t, m, "1")
	assert.Equal(t, SortByName, m.Table().SortKey())
}

func TestKeys_SortToggles(t *testing.T) {
	m := newTestModel(t, newFakeSource())

	m, _ = pressKey(t, m, "3")
	assert.Equal(t, SortByCPU, m.Table().SortKey())
	assert.True(t, m.Table().SortAsc())

	m, _ = pressKey(t, m, "5")
	assert.Equal(t, SortByRSS, m.Table().SortKey())
	assert.False(t, m.Table().SortAsc())

	m, _ = pressKey(t, m, "s")
	assert.Equal(t, SortByName, m.Table().SortKey())
}

func TestKeys_ExpandAndCursor(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	m = pollProcesses(t, m)

	m, _ = pressKey(t, m, "enter")
	assert.Equal(t, "postgres", m.Table().Expanded())
	assert.Len(t, m.lines, 5)

	m, _ = pressKey(t, m, "down")
	line, ok := m.currentLine()
	require.True(t, ok)
	require.True(t, line.IsChild())
	assert.Equal(t, 101, line.Child.PID)

	// enter on a child collapses its group and the cursor falls back to the group row
	m, _ = pressKey(t, m, "enter")
	assert.Empty(t, m.Table().Expanded())
	line, _ = m.currentLine()
	assert.Equal(t, "postgres", line.Group.Name)
	assert.False(t, line.IsChild())
}

func TestKeys_CursorFollowsRowAcrossResort(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	m = pollProcesses(t, m)

	m, _ = pressKey(t, m, "down") // nginx
	m, _ = pressKey(t, m, "1")    // name desc: sshd, postgres, nginx

	line, _ := m.currentLine()
	assert.Equal(t, "nginx", line.Group.Name)
	assert.Equal(t, 2, m.cursor)
}

func TestTerminate_ConfirmSendsAndRepolls(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)
	m = pollProcesses(t, m)

	m, _ = pressKey(t, m, "enter")
	m, _ = pressKey(t, m, "down")
	m, cmd := pressKey(t, m, "x")
	assert.Nil(t, cmd)
	require.NotNil(t, m.confirm)
	assert.Contains(t, m.status, "pid 101")

	m, cmd = pressKey(t, m, "y")
	require.NotNil(t, cmd)
	assert.Nil(t, m.confirm)

	result := cmd()
	assert.Equal(t, []int{101}, src.terminated)

	queriesBefore := len(src.queries)
	m, cmd = update(t, m, result)
	require.NotNil(t, cmd, "terminate is followed by a re-poll")
	assert.Contains(t, m.status, "Sent terminate to pid 101")

	m, _ = update(t, m, cmd())
	assert.Equal(t, queriesBefore+1, len(src.queries))
}

func TestTerminate_FailureStillRepolls(t *testing.T) {
	src := newFakeSource()
	src.terminateErr = errors.New(errors.ErrHTTP, "HTTP 403", "")
	m := newTestModel(t, src)

	m, cmd := update(t, m, terminateResultMsg{pid: 9, err: src.terminateErr})
	require.NotNil(t, cmd)
	assert.Contains(t, m.status, "HTTP 403")
}

func TestTerminate_CancelAndGroupRow(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	m = pollProcesses(t, m)

	m, _ = pressKey(t, m, "x")
	assert.Nil(t, m.confirm, "group rows can't be terminated")
	assert.Contains(t, m.status, "Select a process row")

	m, _ = pressKey(t, m, "enter")
	m, _ = pressKey(t, m, "down")
	m, _ = pressKey(t, m, "x")
	require.NotNil(t, m.confirm)

	m, cmd := pressKey(t, m, "n")
	assert.Nil(t, cmd)
	assert.Nil(t, m.confirm)
}

func TestRefreshKey_PollsBoth(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	_, cmd := pressKey(t, m, "r")
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	assert.Len(t, batch, 2)
}

func TestQuit_CancelsSession(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)
	ctx := m.Context()

	m, cmd := pressKey(t, m, "q")
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Empty(t, m.View())

	// Late results are ignored
	m, cmd = update(t, m, metricsResultMsg{seq: 99, snapshot: &Snapshot{Host: "late"}})
	assert.Nil(t, cmd)
	assert.Nil(t, m.Snapshot())
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t, newFakeSource())

	m, _ = pressKey(t, m, "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	// Other keys are swallowed while help is open
	m, _ = pressKey(t, m, "1")
	assert.Equal(t, SortByCPU, m.Table().SortKey())

	m, _ = pressKey(t, m, "esc")
	assert.False(t, m.showHelp)
}

func TestSpinnerStopsAfterFirstSnapshot(t *testing.T) {
	m := newTestModel(t, newFakeSource())
	_, cmd := update(t, m, m.spinner.Tick())
	assert.NotNil(t, cmd)

	m = pollMetrics(t, m)
	_, cmd = update(t, m, m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestTableRebuiltOnlyForTableMessages(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(t, src)
	m = pollProcesses(t, m)
	require.Len(t, m.lines, 3)

	// Change rows behind the model's back; messages that do not touch the
	// table must not pick this up.
	m.Table().Replace(sampleGroups()[:1])

	m, _ = update(t, m, spinner.TickMsg{})
	assert.Len(t, m.lines, 3, "spinner tick")

	m, _ = update(t, m, processTickMsg{gen: *m.processGen + 1})
	assert.Len(t, m.lines, 3, "stale process tick")

	m = pollMetrics(t, m)
	assert.Len(t, m.lines, 3, "metrics result")
	assert.Equal(t, m.tableBodyHeight(), m.viewport.Height, "metrics result relayouts the row area")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Len(t, m.lines, 1, "resize rebuilds")
}
