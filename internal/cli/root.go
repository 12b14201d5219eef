package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rileyhilliard/sysdash/internal/api"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile    string
	apiURLFlag string
	noColor    bool
)

// errReported marks a failure whose output was already written (e.g. as a
// JSON envelope). Execute exits non-zero without printing it again.
var errReported = stderrors.New("error already reported")

var rootCmd = &cobra.Command{
	Use:   "sysdash",
	Short: "Live system health dashboard for a metrics API",
	Long: `sysdash polls a metrics backend and shows CPU, memory and disk gauges,
rolling graphs, and a searchable process table you can sort, expand and
terminate processes from.

Run without a subcommand to open the dashboard.

Examples:
  sysdash --api-url http://localhost:5000
  sysdash snapshot
  sysdash terminate 4242`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), DashboardOptions{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search for .sysdash.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "metrics API base URL (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command. Errors are printed to stderr and the
// process exits with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	if !stderrors.Is(err, errReported) {
		fmt.Fprint(os.Stderr, err.Error())
	}
	os.Exit(1)
}

// loadConfig resolves the effective config from --config, --api-url, .env
// and the environment.
func loadConfig() (*config.Config, error) {
	return config.Resolve(config.Options{
		Path:   cfgFile,
		APIURL: apiURLFlag,
	})
}

// newClient builds the API client for cfg, tagging requests with sessionID.
func newClient(cfg *config.Config, sessionID string, log logger.Logger) *api.Client {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if log == nil {
		log = logger.Noop()
	}
	return api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithSessionID(sessionID),
		api.WithLogger(log),
	)
}
