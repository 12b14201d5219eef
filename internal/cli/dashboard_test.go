package cli

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCommand_RequiresTerminal(t *testing.T) {
	// go test never gives the process a terminal on stdout
	err := dashboardCommand(context.Background(), DashboardOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "sysdash snapshot")
}

func TestMonitorOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIURL = "http://localhost:5000"
	cfg.HistorySize = 90
	cfg.Thresholds.CPU = config.Threshold{Warn: 70, Crit: 90}
	lg := logger.NewBufferLogger()

	t.Run("config values", func(t *testing.T) {
		mo := monitorOptions(cfg, DashboardOptions{}, "session-1", lg)

		assert.Equal(t, "http://localhost:5000", mo.APIURL)
		assert.Equal(t, 2*time.Second, mo.MetricsInterval)
		assert.Equal(t, 4*time.Second, mo.ProcessInterval)
		assert.Equal(t, 90, mo.HistorySize)
		assert.Equal(t, monitor.Threshold{Warn: 70, Crit: 90}, mo.Thresholds.CPU)
		assert.Equal(t, monitor.Threshold{Warn: 85, Crit: 92}, mo.Thresholds.Disk)
		assert.Equal(t, "session-1", mo.SessionID)
		assert.Same(t, lg, mo.Logger)
	})

	t.Run("flags win", func(t *testing.T) {
		mo := monitorOptions(cfg, DashboardOptions{
			MetricsInterval: 5 * time.Second,
			ProcessInterval: 10 * time.Second,
			Query:           "java",
		}, "", lg)

		assert.Equal(t, 5*time.Second, mo.MetricsInterval)
		assert.Equal(t, 10*time.Second, mo.ProcessInterval)
		assert.Equal(t, "java", mo.Query)
	})
}

func TestRedirectLog(t *testing.T) {
	prev := log.Writer()

	t.Run("discard", func(t *testing.T) {
		restore, err := redirectLog("")
		require.NoError(t, err)
		assert.NotEqual(t, prev, log.Writer())
		restore()
		assert.Equal(t, prev, log.Writer())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sysdash.log")
		restore, err := redirectLog(path)
		require.NoError(t, err)

		log.Print("poll failed")
		restore()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "poll failed")
		assert.Equal(t, prev, log.Writer())
	})

	t.Run("unwritable", func(t *testing.T) {
		_, err := redirectLog(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
		require.Error(t, err)
		assert.Equal(t, prev, log.Writer())
	})
}
