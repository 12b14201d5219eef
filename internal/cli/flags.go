package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
)

// ParseInterval parses a poll interval flag. An empty flag returns zero,
// meaning "use the configured value".
func ParseInterval(name, flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", flag, name),
			"Try something like 2s, 5s, or 1m.")
	}
	if d < config.MinInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s is too short", name),
			fmt.Sprintf("Minimum interval is %s to avoid overwhelming the backend", config.MinInterval))
	}
	return d, nil
}
