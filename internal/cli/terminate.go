package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/rileyhilliard/sysdash/internal/ui"
)

// terminateCommand is the implementation called by the cobra command.
func terminateCommand(ctx context.Context, pidArg string, out io.Writer) error {
	pid, err := parsePID(pidArg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg, "", logger.NewEnvLogger("[api]"))
	return runTerminate(ctx, client, pid, out)
}

// runTerminate sends the terminate request and reports the outcome.
func runTerminate(ctx context.Context, src monitor.Source, pid int, out io.Writer) error {
	if err := src.Terminate(ctx, pid); err != nil {
		return errors.New(errors.CodeOf(err, errors.ErrHTTP),
			fmt.Sprintf("Failed to terminate pid %d: %s", pid, errors.OneLine(err)),
			"Check the process still exists and the backend is allowed to stop it.")
	}

	fmt.Fprintf(out, "%s Sent terminate to pid %d\n", ui.SuccessStyle().Render(ui.SymbolSuccess), pid)
	return nil
}

// parsePID validates a pid argument.
func parsePID(arg string) (int, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil || pid <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid pid", arg),
			"Pass the numeric process id shown in the dashboard or 'sysdash snapshot'.")
	}
	return pid, nil
}
