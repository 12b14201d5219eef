package monitor

// Level is the severity of a gauge reading.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelCrit
)

// String returns "ok", "warn" or "crit".
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelCrit:
		return "crit"
	default:
		return "ok"
	}
}

// Classify returns LevelCrit when v >= crit, LevelWarn when v >= warn,
// and LevelOK otherwise.
func Classify(v, warn, crit float64) Level {
	switch {
	case v >= crit:
		return LevelCrit
	case v >= warn:
		return LevelWarn
	default:
		return LevelOK
	}
}

// Threshold is a warn/crit pair in percent.
type Threshold struct {
	Warn float64
	Crit float64
}

// Classify applies the threshold to v.
func (t Threshold) Classify(v float64) Level {
	return Classify(v, t.Warn, t.Crit)
}

// Thresholds holds the per-gauge thresholds.
type Thresholds struct {
	CPU    Threshold
	Memory Threshold
	Disk   Threshold
}

// DefaultThresholds returns CPU 85/95, memory 85/92 and disk 85/92.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:    Threshold{Warn: 85, Crit: 95},
		Memory: Threshold{Warn: 85, Crit: 92},
		Disk:   Threshold{Warn: 85, Crit: 92},
	}
}
