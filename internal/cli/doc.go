// Package cli implements the sysdash command-line interface.
//
// Each Cobra command in commands.go delegates to a plain function
// (dashboardCommand, snapshotCommand, terminateCommand, Init) that does the
// work and can be tested without Cobra.
//
// # Command Structure
//
//	sysdash              - Open the dashboard (same as "sysdash dashboard")
//	sysdash dashboard    - Live TUI dashboard (alias: dash)
//	sysdash snapshot     - Print metrics and processes once (--json for scripts)
//	sysdash terminate N  - Ask the backend to terminate pid N
//	sysdash init         - Create .sysdash.yaml
//	sysdash version      - Print version information
//	sysdash completion   - Generate shell completion
//
// # Flag Handling
//
// Global flags (--config, --api-url, --no-color) are defined on the root
// command and available to all subcommands. --api-url wins over the config
// file, .env and SYSDASH_API_URL.
//
// # Output
//
// The dashboard needs a terminal and refuses to start without one.
// snapshot and terminate print line-oriented output via internal/ui;
// snapshot --json wraps its result, or its error, in a JSONEnvelope.
package cli
