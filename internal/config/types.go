package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .sysdash.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// APIURL is the base URL of the metrics backend, e.g. http://localhost:5000.
	// The /api/... paths are appended to it.
	APIURL string `yaml:"api_url" mapstructure:"api_url"`

	// MetricsInterval is how often /api/metrics is polled.
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`

	// ProcessInterval is how often /api/processes is polled while the query is unchanged.
	ProcessInterval time.Duration `yaml:"process_interval" mapstructure:"process_interval"`

	// RequestTimeout bounds a single HTTP request. Zero leaves it to the transport.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	// HistorySize is the number of samples kept for the graphs.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	Thresholds Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
}

// Thresholds holds the warn/crit levels for each gauge.
type Thresholds struct {
	CPU    Threshold `yaml:"cpu" mapstructure:"cpu"`
	Memory Threshold `yaml:"memory" mapstructure:"memory"`
	Disk   Threshold `yaml:"disk" mapstructure:"disk"`
}

// Threshold is a warn/crit pair in percent.
type Threshold struct {
	Warn float64 `yaml:"warn" mapstructure:"warn"`
	Crit float64 `yaml:"crit" mapstructure:"crit"`
}

// Defaults used when neither the config file nor the environment sets a value.
const (
	DefaultMetricsInterval = 2 * time.Second
	DefaultProcessInterval = 4 * time.Second
	DefaultHistorySize     = 60

	// MinInterval keeps the dashboard from hammering the backend.
	MinInterval = 500 * time.Millisecond
)

// DefaultThresholds returns the stock gauge thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:    Threshold{Warn: 85, Crit: 95},
		Memory: Threshold{Warn: 85, Crit: 92},
		Disk:   Threshold{Warn: 85, Crit: 92},
	}
}

// DefaultConfig returns a Config with sensible defaults.
// APIURL is left empty; it has no meaningful default.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		MetricsInterval: DefaultMetricsInterval,
		ProcessInterval: DefaultProcessInterval,
		HistorySize:     DefaultHistorySize,
		Thresholds:      DefaultThresholds(),
	}
}
