package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/rileyhilliard/sysdash/internal/ui"
	"golang.org/x/term"
)

// SnapshotOptions holds options for the snapshot command.
type SnapshotOptions struct {
	Query string
	Sort  string // name, count, cpu, mem or rss
	Asc   bool
	Limit int // 0 shows every group
	JSON  bool
	// Width caps the process table. 0 means no cap.
	Width int
	Out   io.Writer
	// Progress receives the spinner. Nil disables it.
	Progress io.Writer
}

// SnapshotData is the --json payload.
type SnapshotData struct {
	APIURL       string                 `json:"api_url"`
	Metrics      *monitor.Snapshot      `json:"metrics"`
	Levels       map[string]string      `json:"levels"`
	Processes    []monitor.ProcessGroup `json:"processes"`
	ProcessError string                 `json:"process_error,omitempty"`
}

// snapshotCommand is the implementation called by the cobra command.
func snapshotCommand(ctx context.Context, opts SnapshotOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if !opts.JSON && term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = os.Stderr
	}
	if opts.Width == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			opts.Width = w
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return reportError(opts, err)
	}

	client := newClient(cfg, "", logger.NewEnvLogger("[api]"))
	return runSnapshot(ctx, client, cfg, opts)
}

// runSnapshot fetches from src once and prints the result.
// A metrics failure fails the command; a process failure is reported
// alongside the metrics.
func runSnapshot(ctx context.Context, src monitor.Source, cfg *config.Config, opts SnapshotOptions) error {
	key, err := monitor.ParseSortKey(opts.Sort)
	if err != nil {
		return reportError(opts, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid --sort value",
			"Use one of: name, count, cpu, mem, rss"))
	}

	var spinner *ui.Spinner
	if opts.Progress != nil {
		spinner = ui.NewSpinner(opts.Progress, "Fetching "+cfg.APIURL)
		spinner.Start()
	}

	snap, err := src.Metrics(ctx)
	if err != nil {
		if spinner != nil {
			spinner.Fail()
		}
		return reportError(opts, err)
	}

	table := monitor.NewProcessTable()
	table.SetQuery(opts.Query)
	table.SetSort(key, opts.Asc)

	var processErr string
	rows, err := src.Processes(ctx, opts.Query)
	if err != nil {
		processErr = errors.OneLine(err)
	} else {
		table.Replace(rows)
	}

	if spinner != nil {
		spinner.Success()
	}

	sorted := table.SortedRows()
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	th := monitorThresholds(cfg.Thresholds)

	if opts.JSON {
		if sorted == nil {
			sorted = []monitor.ProcessGroup{}
		}
		return WriteJSONSuccess(opts.Out, SnapshotData{
			APIURL:       cfg.APIURL,
			Metrics:      snap,
			Levels:       snapshotLevels(snap, th),
			Processes:    sorted,
			ProcessError: processErr,
		})
	}

	fmt.Fprint(opts.Out, renderSnapshot(snap, th))
	fmt.Fprintln(opts.Out)
	fmt.Fprint(opts.Out, renderProcessList(sorted, len(table.Rows()), key, opts.Asc, processErr, opts.Width))
	fmt.Fprintln(opts.Out)
	fmt.Fprintln(opts.Out, ui.MutedStyle().Render(thresholdLine(th)))
	return nil
}

// reportError returns err for the normal error printer, or writes it as a
// JSON envelope in --json mode.
func reportError(opts SnapshotOptions, err error) error {
	if !opts.JSON {
		return err
	}
	if werr := WriteJSONFromError(opts.Out, err); werr != nil {
		return err
	}
	return errReported
}

// snapshotLevels classifies each gauge that is present.
func snapshotLevels(s *monitor.Snapshot, th monitor.Thresholds) map[string]string {
	levels := make(map[string]string, 3)
	if s.CPU != nil {
		levels["cpu"] = th.CPU.Classify(s.CPU.Percent).String()
	}
	if s.Memory != nil {
		levels["memory"] = th.Memory.Classify(s.Memory.Percent).String()
	}
	if s.Disk != nil {
		levels["disk"] = th.Disk.Classify(s.Disk.Percent).String()
	}
	return levels
}

func renderSnapshot(s *monitor.Snapshot, th monitor.Thresholds) string {
	var b strings.Builder

	host := s.Host
	if host == "" {
		host = "-"
	}
	updated := "-"
	if !s.Timestamp.IsZero() {
		updated = s.Timestamp.Local().Format("15:04:05")
	}
	hours, minutes := monitor.FormatUptime(s.UptimeSeconds)

	b.WriteString(ui.HeadingStyle().Render(host))
	b.WriteString(ui.MutedStyle().Render(fmt.Sprintf("  updated %s  up %s %s", updated, hours, minutes)))
	b.WriteString("\n")

	var cpu *float64
	if s.CPU != nil {
		cpu = &s.CPU.Percent
	}
	b.WriteString(gaugeLine("CPU", cpu, nil, th.CPU))
	b.WriteString(gaugeLine("Memory", usagePercent(s.Memory), s.Memory, th.Memory))
	b.WriteString(gaugeLine("Disk", usagePercent(s.Disk), s.Disk, th.Disk))
	return b.String()
}

func usagePercent(u *monitor.UsageStat) *float64 {
	if u == nil {
		return nil
	}
	return &u.Percent
}

// gaugeLine renders "CPU      12.5%  ok" with an optional used/total.
func gaugeLine(label string, percent *float64, usage *monitor.UsageStat, th monitor.Threshold) string {
	name := lipgloss.NewStyle().Width(8).Render(label)
	if percent == nil {
		return name + ui.MutedStyle().Render("     -") + "\n"
	}

	level := th.Classify(*percent)
	line := fmt.Sprintf("%s%6.1f%%  %s", name, *percent, levelTag(level))
	if usage != nil {
		line += ui.MutedStyle().Render(fmt.Sprintf("  %s / %s",
			monitor.FormatBytes(usage.Used), monitor.FormatBytes(usage.Total)))
	}
	return line + "\n"
}

// levelTag renders a fixed-width, colored level marker.
func levelTag(l monitor.Level) string {
	text := fmt.Sprintf("%-4s", l.String())
	switch l {
	case monitor.LevelCrit:
		return ui.ErrorStyle().Render(ui.SymbolFail + " " + text)
	case monitor.LevelWarn:
		return ui.WarningStyle().Render(ui.SymbolWarning + " " + text)
	default:
		return ui.SuccessStyle().Render(ui.SymbolSuccess + " " + text)
	}
}

var processColumns = []ui.TableColumn{
	{Title: "Name", Width: 28},
	{Title: "Count", Width: 7, Right: true},
	{Title: "CPU%", Width: 7, Right: true},
	{Title: "Mem%", Width: 7, Right: true},
	{Title: "RSS", Width: 10, Right: true},
}

func renderProcessList(rows []monitor.ProcessGroup, total int, key monitor.SortKey, asc bool, processErr string, width int) string {
	var b strings.Builder

	dir := "desc"
	if asc {
		dir = "asc"
	}
	b.WriteString(ui.HeadingStyle().Render("Processes"))
	b.WriteString(ui.MutedStyle().Render(fmt.Sprintf("  %d of %d groups, by %s %s", len(rows), total, key.Label(), dir)))
	b.WriteString("\n")

	if processErr != "" {
		b.WriteString(ui.ErrorStyle().Render(ui.SymbolFail+" Process list unavailable: "+processErr) + "\n")
		return b.String()
	}
	if len(rows) == 0 {
		b.WriteString(ui.MutedStyle().Render("No processes match") + "\n")
		return b.String()
	}

	cells := make([][]string, len(rows))
	for i, g := range rows {
		cells[i] = []string{
			g.Name,
			strconv.Itoa(g.Count),
			fmt.Sprintf("%.1f", g.CPU),
			fmt.Sprintf("%.1f", g.Mem),
			monitor.FormatBytes(g.RSS),
		}
	}
	b.WriteString(ui.RenderSimpleTable(ui.FitColumns(processColumns, width), cells))
	b.WriteString("\n")
	return b.String()
}

func thresholdLine(th monitor.Thresholds) string {
	return fmt.Sprintf("Thresholds: CPU %g/%g • MEM %g/%g • DISK %g/%g",
		th.CPU.Warn, th.CPU.Crit, th.Memory.Warn, th.Memory.Crit, th.Disk.Warn, th.Disk.Crit)
}
