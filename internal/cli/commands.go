package cli

import (
	"os"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	dashMetricsIntervalFlag string
	dashProcessIntervalFlag string
	dashQueryFlag           string
	snapshotJSONFlag        bool
	snapshotQueryFlag       string
	snapshotSortFlag        string
	snapshotAscFlag         bool
	snapshotLimitFlag       int
	initForce               bool
	initNonInteractive      bool
)

// dashboardCmd starts the TUI dashboard
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Open the live dashboard",
	Long: `Start the interactive dashboard.

Metrics are polled every 2s and the process list every 4s (and right away
whenever the search changes). Failed polls keep the last good data on screen.

Keyboard shortcuts:
  /           Search processes (esc or enter to leave)
  1-5         Sort by name, count, CPU%, Mem%, RSS (again to flip)
  s           Next sort column
  up/k        Previous row
  down/j      Next row
  Enter       Expand or collapse a group
  x           Terminate the selected process (y to confirm)
  r           Refresh now
  ?           Show help
  q / Ctrl+C  Quit

The mouse works too: click column headers to sort, rows to expand, and
[terminate] to stop a process.

Examples:
  sysdash dashboard
  sysdash dash --query postgres
  sysdash dash --metrics-interval 5s --process-interval 10s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics, err := ParseInterval("metrics-interval", dashMetricsIntervalFlag)
		if err != nil {
			return err
		}
		processes, err := ParseInterval("process-interval", dashProcessIntervalFlag)
		if err != nil {
			return err
		}
		return dashboardCommand(cmd.Context(), DashboardOptions{
			MetricsInterval: metrics,
			ProcessInterval: processes,
			Query:           dashQueryFlag,
		})
	},
}

// snapshotCmd prints a one-shot summary
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print current metrics and processes once",
	Long: `Fetch the metrics and the process list once and print them.

Works without a terminal, so it is the command to use in scripts and CI.

Examples:
  sysdash snapshot
  sysdash snapshot --query java --sort mem --limit 5
  sysdash snapshot --json | jq .data.metrics.cpu`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd.Context(), SnapshotOptions{
			Query: snapshotQueryFlag,
			Sort:  snapshotSortFlag,
			Asc:   snapshotAscFlag,
			Limit: snapshotLimitFlag,
			JSON:  snapshotJSONFlag,
			Out:   cmd.OutOrStdout(),
		})
	},
}

// terminateCmd sends a termination request for one process
var terminateCmd = &cobra.Command{
	Use:   "terminate <pid>",
	Short: "Ask the backend to terminate a process",
	Long: `Send a terminate request for the given pid to the metrics backend.

Examples:
  sysdash terminate 4242`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return terminateCommand(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

// initCmd creates a new .sysdash.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .sysdash.yaml configuration",
	Long: `Create a .sysdash.yaml file in the current directory.

Prompts for the API URL and poll intervals, then checks the backend
answers before saving. With --non-interactive and an existing config,
only api_url is rewritten and the rest of the file is left alone.

Examples:
  sysdash init
  sysdash init --api-url http://localhost:5000 --non-interactive
  sysdash init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.Context(), InitOptions{
			APIURL:         apiURLFlag,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			Out:            cmd.OutOrStdout(),
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sysdash.

Examples:
  # Bash
  sysdash completion bash > /etc/bash_completion.d/sysdash

  # Zsh
  sysdash completion zsh > "${fpath[1]}/_sysdash"

  # Fish
  sysdash completion fish > ~/.config/fish/completions/sysdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// dashboard command flags
	dashboardCmd.Flags().StringVar(&dashMetricsIntervalFlag, "metrics-interval", "", "metrics refresh interval (e.g., 2s, 5s)")
	dashboardCmd.Flags().StringVar(&dashProcessIntervalFlag, "process-interval", "", "process list refresh interval (e.g., 4s, 10s)")
	dashboardCmd.Flags().StringVar(&dashQueryFlag, "query", "", "initial process search")

	// snapshot command flags
	snapshotCmd.Flags().BoolVar(&snapshotJSONFlag, "json", false, "print machine-readable JSON")
	snapshotCmd.Flags().StringVar(&snapshotQueryFlag, "query", "", "process search (matched by the backend)")
	snapshotCmd.Flags().StringVar(&snapshotSortFlag, "sort", "cpu", "sort column: name, count, cpu, mem, rss")
	snapshotCmd.Flags().BoolVar(&snapshotAscFlag, "asc", false, "sort ascending")
	snapshotCmd.Flags().IntVar(&snapshotLimitFlag, "limit", 15, "max process groups to show (0 for all)")

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts (requires --api-url)")

	// Register all commands
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(terminateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
