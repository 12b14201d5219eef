package cli

import (
	"context"
	stderrors "errors"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"golang.org/x/term"
)

// LogFileEnv names a file that receives log output while the dashboard owns
// the screen. Unset means logs are discarded.
const LogFileEnv = "SYSDASH_LOG"

// DashboardOptions holds flag overrides for the dashboard. Zero values fall
// back to the config.
type DashboardOptions struct {
	MetricsInterval time.Duration
	ProcessInterval time.Duration
	Query           string
}

// dashboardCommand starts the TUI dashboard.
func dashboardCommand(ctx context.Context, opts DashboardOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'sysdash snapshot' for one-shot output, or 'sysdash snapshot --json' in scripts.")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	restoreLog, err := redirectLog(os.Getenv(LogFileEnv))
	if err != nil {
		return err
	}
	defer restoreLog()

	sessionID := uuid.NewString()
	lg := logger.NewEnvLogger("[sysdash]")
	client := newClient(cfg, sessionID, lg)

	model := monitor.NewModel(ctx, client, monitorOptions(cfg, opts, sessionID, lg))

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// interrupted by a signal
		return nil
	}
	return err
}

// monitorOptions merges the config with flag overrides.
func monitorOptions(cfg *config.Config, opts DashboardOptions, sessionID string, lg logger.Logger) monitor.Options {
	mo := monitor.Options{
		APIURL:          cfg.APIURL,
		MetricsInterval: cfg.MetricsInterval,
		ProcessInterval: cfg.ProcessInterval,
		HistorySize:     cfg.HistorySize,
		Thresholds:      monitorThresholds(cfg.Thresholds),
		Query:           opts.Query,
		SessionID:       sessionID,
		Logger:          lg,
	}
	if opts.MetricsInterval > 0 {
		mo.MetricsInterval = opts.MetricsInterval
	}
	if opts.ProcessInterval > 0 {
		mo.ProcessInterval = opts.ProcessInterval
	}
	return mo
}

func monitorThresholds(t config.Thresholds) monitor.Thresholds {
	return monitor.Thresholds{
		CPU:    monitor.Threshold{Warn: t.CPU.Warn, Crit: t.CPU.Crit},
		Memory: monitor.Threshold{Warn: t.Memory.Warn, Crit: t.Memory.Crit},
		Disk:   monitor.Threshold{Warn: t.Disk.Warn, Crit: t.Disk.Crit},
	}
}

// redirectLog points the standard logger at path, or discards it when path
// is empty, so log lines can't draw over the alt screen. The returned func
// restores the previous output.
func redirectLog(path string) (func(), error) {
	prev, prevPrefix := log.Writer(), log.Prefix()
	restore := func() {
		log.SetOutput(prev)
		log.SetPrefix(prevPrefix)
	}

	if path == "" {
		log.SetOutput(io.Discard)
		return restore, nil
	}

	f, err := tea.LogToFile(path, "sysdash")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open log file "+path,
			"Check "+LogFileEnv+" points at a writable path")
	}
	return func() {
		f.Close()
		restore()
	}, nil
}
