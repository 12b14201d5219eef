package monitor

import (
	"fmt"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n in 1024-based units with one decimal, e.g. "1.5 GB".
// Values past TB stay in TB.
func FormatBytes(n uint64) string {
	x := float64(n)
	i := 0
	for x >= 1024 && i < len(byteUnits)-1 {
		x /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", x, byteUnits[i])
}

// formatUsage renders "used / total", or "-" for a missing reading.
func formatUsage(u *UsageStat) string {
	if u == nil {
		return "- / -"
	}
	return FormatBytes(u.Used) + " / " + FormatBytes(u.Total)
}

// formatPercent renders a percent reading as "12.5 %", or "- %" when missing.
func formatPercent(v float64, ok bool) string {
	if !ok {
		return "- %"
	}
	return fmt.Sprintf("%.1f %%", v)
}

// FormatUptime splits seconds into whole hours and leftover minutes,
// e.g. 93784 -> "26h", "3m".
func FormatUptime(seconds int64) (hours, minutes string) {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh", seconds/3600), fmt.Sprintf("%dm", seconds%3600/60)
}

// formatClock renders t in local time, or "-" for the zero time.
func formatClock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("15:04:05")
}

// formatSpan renders the graph window as "~2m" or "~40s".
func formatSpan(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Minute:
		return fmt.Sprintf("~%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("~%dm", int(d.Round(time.Minute).Minutes()))
	}
}
