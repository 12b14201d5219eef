package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Neon palette shared with the dashboard.
const (
	ColorNeonPink   lipgloss.Color = "#FF2E97"
	ColorNeonCyan   lipgloss.Color = "#00F0FF"
	ColorNeonPurple lipgloss.Color = "#B14EFF"
	ColorNeonGreen  lipgloss.Color = "#39FF14"
	ColorNeonAmber  lipgloss.Color = "#FFBF00"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "#39FF14"
	ColorError   lipgloss.Color = "#FF3B5C"
	ColorWarning lipgloss.Color = "#FFBF00"
	ColorInfo    lipgloss.Color = "#00F0FF"
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#E2E8F0"
	ColorSecondary lipgloss.Color = "#94A3B8"
	ColorMuted     lipgloss.Color = "#64748B"
)

// GradientColors are cycled through by the spinner.
var GradientColors = []lipgloss.Color{
	ColorNeonPink,
	ColorNeonPurple,
	ColorNeonCyan,
	ColorNeonGreen,
}

// SuccessStyle renders text in the success color.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders text in the error color.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle renders text in the warning color.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// HeadingStyle renders section headings.
func HeadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorNeonCyan)
}

// DisableColors switches lipgloss to plain ASCII output (for --no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
