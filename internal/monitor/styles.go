package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette - electric synthwave
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Level colors
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	ColorAccent = lipgloss.Color("#FF2E97") // Neon pink
	ColorLive   = lipgloss.Color("#38BDF8") // Sky blue

	ColorSelectedBg = lipgloss.Color("#1E293B")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Background(ColorSurfaceBg).
			Padding(0, 1).
			MarginLeft(1)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorCritical).
				Bold(true).
				Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Process table
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true)

	TableActiveHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	TableSelectedStyle = lipgloss.NewStyle().
				Background(ColorSelectedBg).
				Foreground(ColorTextPrimary)

	TableChildStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	TerminateButtonStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Padding(0, 1)
)

// LevelColor returns the color for a level.
func LevelColor(l Level) lipgloss.Color {
	switch l {
	case LevelCrit:
		return ColorCritical
	case LevelWarn:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// LevelStyle returns a foreground style for a level.
func LevelStyle(l Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(l))
}

// ProgressBar renders a bracketless gauge colored by the threshold level.
func ProgressBar(width int, percent float64, th Threshold) string {
	if width < 1 {
		width = 1
	}

	// Clamp percentage to 0-100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return LevelStyle(th.Classify(percent)).Render(bar)
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " + title + " "
	leftWidth := 3 + lipgloss.Width(title) + 1
	// Right: " " + value + " ╮"
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		value +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	middle := strings.Repeat("─", width-2)
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	// Inner width excludes "│ " and " │"
	innerWidth := width - 4
	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
