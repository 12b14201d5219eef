package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty); dot n is bit n-1.

const brailleBase = '\u2800'

// brailleDots maps [row][col] to the bit offset within a braille rune.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// RenderBrailleGraph plots percentages (0-100) as a braille area graph.
// Each character holds two samples and four vertical levels per row.
// Short data is right-aligned so the newest sample sits at the right edge.
// Columns are colored by the level of their highest sample.
func RenderBrailleGraph(data []float64, width, height int, th Threshold) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	totalDots := height * 4
	targetPoints := width * 2

	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	colMax := make([]float64, width)
	colUsed := make([]bool, width)

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		dotHeight := clampInt(int(clampPercent(val)/100*float64(totalDots)+0.5), totalDots)
		// Keep non-zero samples visible
		if dotHeight == 0 && val > 0 {
			dotHeight = 1
		}

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		if !colUsed[charCol] || val > colMax[charCol] {
			colMax[charCol] = val
			colUsed[charCol] = true
		}

		subCol := (i + horizOffset) % 2
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	lines := make([]string, 0, height)
	for _, row := range grid {
		var b strings.Builder
		for col, char := range row {
			color := ColorTextMuted
			if colUsed[col] {
				color = LevelColor(th.Classify(colMax[col]))
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(char)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// clampInt clamps an integer to [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// resampleData resamples data to the target size.
// Downsampling keeps the max of each bucket so spikes survive; upsampling
// interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}
