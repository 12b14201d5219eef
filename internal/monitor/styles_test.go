package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	th := Threshold{Warn: 85, Crit: 95}

	tests := []struct {
		name       string
		percent    float64
		wantFilled int
	}{
		{"empty", 0, 0},
		{"half", 50, 5},
		{"full", 100, 10},
		{"negative clamps", -20, 0},
		{"over clamps", 140, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(10, tt.percent, th)
			assert.Equal(t, tt.wantFilled, strings.Count(bar, "▰"))
			assert.Equal(t, 10-tt.wantFilled, strings.Count(bar, "▱"))
		})
	}
}

func TestProgressBar_MinimumWidth(t *testing.T) {
	bar := ProgressBar(0, 100, Threshold{Warn: 85, Crit: 92})
	assert.Equal(t, 1, strings.Count(bar, "▰"))
}

func TestSectionHeader(t *testing.T) {
	header := SectionHeader("Processes", "12 groups", 40)

	assert.Equal(t, 40, lipgloss.Width(header))
	assert.Contains(t, header, "Processes")
	assert.Contains(t, header, "12 groups")
	assert.True(t, strings.HasPrefix(stripANSI(header), "╭─ "))
	assert.True(t, strings.HasSuffix(stripANSI(header), " ╮"))
}

func TestSectionFooter(t *testing.T) {
	assert.Equal(t, "╰────╯", stripANSI(SectionFooter(6)))
	assert.Equal(t, 2, lipgloss.Width(SectionFooter(0)))
}

func TestSectionContentLine(t *testing.T) {
	line := SectionContentLine("nginx", 20)

	assert.Equal(t, 20, lipgloss.Width(line))
	assert.Equal(t, "│ nginx            │", stripANSI(line))
}
