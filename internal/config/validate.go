package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/sysdash/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sysdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sysdash or lower the version in your config.")
	}

	if err := ValidateAPIURL(cfg.APIURL); err != nil {
		return err
	}

	if err := validateInterval("metrics_interval", cfg.MetricsInterval); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use a duration like 2s, 5s, or 1m.")
	}
	if err := validateInterval("process_interval", cfg.ProcessInterval); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use a duration like 4s, 10s, or 1m.")
	}
	if cfg.RequestTimeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("request_timeout can't be negative (got %s)", cfg.RequestTimeout),
			"Use 0 to rely on the transport default, or a duration like 5s.")
	}

	if cfg.HistorySize < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history_size needs to be at least 1 (got %d)", cfg.HistorySize),
			fmt.Sprintf("The default is %d samples.", DefaultHistorySize))
	}

	for _, th := range []struct {
		name string
		t    Threshold
	}{
		{"cpu", cfg.Thresholds.CPU},
		{"memory", cfg.Thresholds.Memory},
		{"disk", cfg.Thresholds.Disk},
	} {
		if err := validateThreshold(th.name, th.t); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'thresholds' section in your .sysdash.yaml.")
		}
	}

	return nil
}

// ValidateAPIURL checks that the API base URL is an absolute http(s) URL.
func ValidateAPIURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New(errors.ErrConfig,
			"No API URL configured",
			"Pass --api-url, set SYSDASH_API_URL, or run 'sysdash init'.")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("API URL '%s' doesn't parse", raw),
			"Use something like http://localhost:5000")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("API URL '%s' needs an http:// or https:// scheme", raw),
			"Use something like http://localhost:5000")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("API URL '%s' has no host", raw),
			"Use something like http://localhost:5000")
	}
	return nil
}

func validateInterval(name string, d time.Duration) error {
	if d < MinInterval {
		return fmt.Errorf("%s is %s - the minimum is %s to avoid overwhelming the backend", name, d, MinInterval)
	}
	return nil
}

func validateThreshold(name string, t Threshold) error {
	if t.Warn < 0 || t.Warn > 100 {
		return fmt.Errorf("thresholds.%s.warn needs to be 0-100 (got %g)", name, t.Warn)
	}
	if t.Crit < 0 || t.Crit > 100 {
		return fmt.Errorf("thresholds.%s.crit needs to be 0-100 (got %g)", name, t.Crit)
	}
	if t.Warn >= t.Crit {
		return fmt.Errorf("thresholds.%s.warn (%g%%) is not below crit (%g%%) - should be the other way around", name, t.Warn, t.Crit)
	}
	return nil
}
