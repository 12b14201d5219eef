package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColorConstants(t *testing.T) {
	colors := []lipgloss.Color{
		ColorNeonPink,
		ColorNeonCyan,
		ColorNeonPurple,
		ColorNeonGreen,
		ColorNeonAmber,
		ColorSuccess,
		ColorError,
		ColorWarning,
		ColorInfo,
		ColorPrimary,
		ColorSecondary,
		ColorMuted,
	}

	for _, color := range colors {
		colorStr := string(color)
		assert.NotEmpty(t, colorStr, "color should not be empty")
		assert.True(t, colorStr[0] == '#', "color should start with #: %s", colorStr)
		assert.Len(t, colorStr, 7, "color should be 7 chars (#RRGGBB): %s", colorStr)
	}
}

func TestGradientColors(t *testing.T) {
	assert.Len(t, GradientColors, 4)
	for i, color := range GradientColors {
		assert.NotEmpty(t, string(color), "gradient color %d should not be empty", i)
	}
}

func TestStyles_RenderText(t *testing.T) {
	styles := map[string]lipgloss.Style{
		"success": SuccessStyle(),
		"error":   ErrorStyle(),
		"warning": WarningStyle(),
		"muted":   MutedStyle(),
		"heading": HeadingStyle(),
	}

	for name, style := range styles {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render(name), name)
		})
	}
}

func TestDisableColors(t *testing.T) {
	original := lipgloss.ColorProfile()
	defer lipgloss.SetColorProfile(original)

	DisableColors()

	assert.Equal(t, "plain", ErrorStyle().Render("plain"))
}
