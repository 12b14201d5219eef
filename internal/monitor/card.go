package monitor

import (
	"github.com/charmbracelet/lipgloss"
)

// Card layout constants
const (
	cardMinWidth = 18
	cardMaxWidth = 30
	cardBarWidth = 12
)

// card is one tile in the summary row.
type card struct {
	label string
	value string
	sub   string
	bar   string
	level Level
	// leveled cards get a colored border
	leveled bool
}

// metricCards builds the summary tiles for the latest snapshot.
func (m Model) metricCards() []card {
	s := m.snapshot
	th := m.opts.Thresholds
	hours, minutes := FormatUptime(s.UptimeSeconds)

	cpu := s.CPUPercent()
	mem := s.MemoryPercent()
	disk := s.DiskPercent()

	return []card{
		{
			label: "Host",
			value: orDash(s.Host),
			sub:   formatClock(s.Timestamp),
		},
		{
			label:   "CPU",
			value:   formatPercent(cpu, s.CPU != nil),
			bar:     ProgressBar(cardBarWidth, cpu, th.CPU),
			level:   th.CPU.Classify(cpu),
			leveled: true,
		},
		{
			label:   "Memory",
			value:   formatPercent(mem, s.Memory != nil),
			sub:     formatUsage(s.Memory),
			bar:     ProgressBar(cardBarWidth, mem, th.Memory),
			level:   th.Memory.Classify(mem),
			leveled: true,
		},
		{
			label:   "Disk",
			value:   formatPercent(disk, s.Disk != nil),
			sub:     formatUsage(s.Disk),
			bar:     ProgressBar(cardBarWidth, disk, th.Disk),
			level:   th.Disk.Classify(disk),
			leveled: true,
		},
		{
			label: "Uptime",
			value: hours,
			sub:   minutes,
		},
	}
}

// renderCard renders a single tile at the given outer width. A non-zero
// height stretches the tile so a row of cards lines up.
func renderCard(c card, width, height int) string {
	style := CardStyle.Width(width - 3) // border + margin
	if height > 2 {
		style = style.Height(height - 2)
	}
	if c.leveled {
		style = style.BorderForeground(LevelColor(c.level))
	}
	return style.Render(cardBody(c))
}

// cardBody renders the lines inside a tile.
func cardBody(c card) string {
	valueStyle := ValueStyle
	if c.leveled {
		valueStyle = valueStyle.Foreground(LevelColor(c.level))
	}
	lines := []string{
		LabelStyle.Render(c.label),
		valueStyle.Render(c.value),
	}
	if c.bar != "" {
		lines = append(lines, c.bar)
	}
	if c.sub != "" {
		lines = append(lines, MutedStyle.Render(c.sub))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderCards lays the tiles out in as few rows as the width allows.
func (m Model) renderCards() string {
	cards := m.metricCards()
	width := m.contentWidth()

	perRow := len(cards)
	cardWidth := width / perRow
	for cardWidth < cardMinWidth && perRow > 1 {
		perRow--
		cardWidth = width / perRow
	}
	if cardWidth > cardMaxWidth {
		cardWidth = cardMaxWidth
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		tallest := 0
		for _, c := range cards[i:end] {
			if h := lipgloss.Height(cardBody(c)) + 2; h > tallest {
				tallest = h
			}
		}
		rendered := make([]string, 0, end-i)
		for _, c := range cards[i:end] {
			rendered = append(rendered, renderCard(c, cardWidth, tallest))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
