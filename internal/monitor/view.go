package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	defaultWidth     = 100
	minWidth         = 40
	graphMinWidth    = 28
	graphRowsTall    = 4
	graphRowsShort   = 2
	shortTermHeight  = 40
	graphsSideBySide = 3
)

// contentWidth is the usable terminal width.
func (m Model) contentWidth() int {
	w := m.width
	if w == 0 {
		w = defaultWidth
	}
	if w < minWidth {
		w = minWidth
	}
	return w
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	parts := []string{
		m.renderTop(),
		m.renderProcessSection(),
		m.renderStatus(),
		m.renderFooter(),
	}
	return strings.Join(parts, "\n")
}

// renderTop renders everything above the process table.
func (m Model) renderTop() string {
	parts := []string{m.renderHeader()}

	if m.metricsErr != "" {
		parts = append(parts, m.renderErrorBanner())
	}

	if m.snapshot == nil {
		parts = append(parts, "", m.spinner.View()+" "+LabelStyle.Render("Loading..."), "")
		return strings.Join(parts, "\n")
	}

	parts = append(parts, m.renderCards(), m.renderGraphs())
	return strings.Join(parts, "\n")
}

// renderHeader renders the title with the LIVE, source and updated badges.
func (m Model) renderHeader() string {
	live := lipgloss.NewStyle().Foreground(ColorLive).Render("●") + " LIVE"
	badges := []string{
		TitleStyle.Render("System Health Dashboard"),
		BadgeStyle.Render(live),
		BadgeStyle.Render("Source: " + m.opts.APIURL + "/api/metrics"),
	}
	if m.snapshot != nil {
		badges = append(badges, BadgeStyle.Render("Updated: "+formatClock(m.snapshot.Timestamp)))
	}
	return truncateLine(lipgloss.JoinHorizontal(lipgloss.Center, badges...), m.contentWidth())
}

// renderErrorBanner renders the last metrics failure.
func (m Model) renderErrorBanner() string {
	return ErrorBannerStyle.Width(m.contentWidth()).Render("Error: " + m.metricsErr)
}

// renderGraphs renders the CPU, memory and disk history graphs, side by
// side when there is room.
func (m Model) renderGraphs() string {
	th := m.opts.Thresholds
	type graph struct {
		title string
		data  []float64
		th    Threshold
	}
	graphs := []graph{
		{"CPU %", m.series.CPU(), th.CPU},
		{"Memory %", m.series.Mem(), th.Memory},
		{"Disk %", m.series.Disk(), th.Disk},
	}

	width := m.contentWidth()
	perRow := graphsSideBySide
	if width/perRow < graphMinWidth {
		perRow = 1
	}
	graphWidth := width / perRow

	rows := graphRowsTall
	if m.height > 0 && m.height < shortTermHeight {
		rows = graphRowsShort
	}

	rendered := make([]string, 0, len(graphs))
	for _, g := range graphs {
		rendered = append(rendered, m.renderGraph(g.title, g.data, g.th, graphWidth, rows))
	}
	if perRow == 1 {
		return lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderGraph renders one framed graph with the current value in the header.
func (m Model) renderGraph(title string, data []float64, th Threshold, width, rows int) string {
	if span := formatSpan(m.series.Span()); span != "" {
		title += " (last " + span + ")"
	}

	value := MutedStyle.Render("-")
	if len(data) > 0 {
		last := data[len(data)-1]
		value = LevelStyle(th.Classify(last)).Bold(true).Render(fmt.Sprintf("%.1f%%", last))
	}

	inner := width - 4
	graph := RenderBrailleGraph(data, inner, rows, th)

	lines := []string{SectionHeader(title, value, width)}
	for _, l := range strings.Split(graph, "\n") {
		lines = append(lines, SectionContentLine(l, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderStatus renders the transient status line (terminate prompts and results).
func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return StatusStyle.Render(truncate(m.status, m.contentWidth()-2))
}

// renderFooter renders the thresholds legend and key hints.
func (m Model) renderFooter() string {
	th := m.opts.Thresholds
	legend := fmt.Sprintf("Thresholds: CPU %g/%g • MEM %g/%g • DISK %g/%g",
		th.CPU.Warn, th.CPU.Crit, th.Memory.Warn, th.Memory.Crit, th.Disk.Warn, th.Disk.Crit)

	hints := m.help.ShortHelpView(keys.ShortHelp())
	if m.searching {
		hints = MutedStyle.Render("type to filter • enter/esc done")
	}
	return FooterStyle.Render(legend) + "\n" + FooterStyle.Render(hints)
}

// truncateLine cuts a rendered line to width cells.
func truncateLine(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
