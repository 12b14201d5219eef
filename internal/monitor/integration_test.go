package monitor_test

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdash/internal/api"
	"github.com/rileyhilliard/sysdash/internal/api/apitest"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain runs cmd and feeds every resulting message back into the model
// until no commands are left. Only poll commands may be reachable from cmd;
// a tick would block for a full interval.
func drain(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

// refresh presses r, which polls both endpoints right away.
func refresh(t *testing.T, m tea.Model) tea.Model {
	t.Helper()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	return drain(t, m, cmd)
}

func TestDashboardAgainstHTTPBackend(t *testing.T) {
	srv := apitest.New(t)
	log := logger.NewBufferLogger()
	client := api.NewClient(srv.URL, api.WithLogger(log), api.WithSessionID("it-session"))

	var m tea.Model = monitor.NewModel(context.Background(), client, monitor.Options{
		APIURL:    srv.URL,
		SessionID: "it-session",
		Logger:    log,
	})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	// Fire the initial polls without waiting on timers
	m = refresh(t, m)

	dash := m.(monitor.Model)
	require.NotNil(t, dash.Snapshot())
	assert.Equal(t, "web-01", dash.Snapshot().Host)
	assert.Equal(t, 1, dash.Series().Len())
	assert.Len(t, dash.Table().Rows(), 3)
	assert.Contains(t, srv.SessionIDs(), "it-session")

	view := dash.View()
	assert.Contains(t, view, "System Health Dashboard")
	assert.Contains(t, view, "web-01")
	assert.Contains(t, view, "postgres")

	// Backend starts failing: the banner shows and the data stays put
	srv.SetMetrics(http.StatusInternalServerError, "boom")
	m = refresh(t, m)

	dash = m.(monitor.Model)
	assert.Equal(t, "HTTP 500", dash.MetricsError())
	assert.Equal(t, "web-01", dash.Snapshot().Host)
	assert.Equal(t, 1, dash.Series().Len())

	// And recovers
	srv.SetMetrics(http.StatusOK, apitest.DefaultMetrics)
	m = refresh(t, m)

	dash = m.(monitor.Model)
	assert.Empty(t, dash.MetricsError())
	assert.Equal(t, 2, dash.Series().Len())
}

func TestDashboardNullMetricsBodyKeepsState(t *testing.T) {
	srv := apitest.New(t)
	client := api.NewClient(srv.URL)

	var m tea.Model = monitor.NewModel(context.Background(), client, monitor.Options{APIURL: srv.URL})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	m = refresh(t, m)

	dash := m.(monitor.Model)
	require.NotNil(t, dash.Snapshot())
	require.Equal(t, 1, dash.Series().Len())

	srv.SetMetrics(http.StatusOK, "null")
	m = refresh(t, m)

	dash = m.(monitor.Model)
	assert.Equal(t, "Metrics response is empty", dash.MetricsError())
	assert.Equal(t, "web-01", dash.Snapshot().Host)
	assert.Equal(t, 1, dash.Series().Len())
}
