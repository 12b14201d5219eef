// Package monitor implements the sysdash terminal dashboard.
//
// The dashboard polls a metrics backend on two independent loops and renders
// system health (CPU, memory and disk gauges with rolling graphs) above a
// searchable, sortable, expandable process table.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds session state (latest snapshot, series, process table, widgets)
//   - Update: Processes messages (keystrokes, mouse, poll ticks, fetch results)
//   - View: Renders the current state to a string for display
//
// # Key Components
//
//	Model        - The Bubble Tea model for one dashboard session
//	Source       - Where data comes from (internal/api.Client in production)
//	Series       - Bounded ring of graph samples (60 by default)
//	ProcessTable - Rows plus query, sort column/direction and the expanded group
//	Classify     - Maps a reading to ok/warn/crit against a Threshold
//
// # Message Flow
//
// Two pollers run side by side and never wait on each other:
//
//  1. metricsTickMsg fires every 2s; a fetch command runs in its own goroutine
//  2. metricsResultMsg arrives; success replaces the snapshot, clears the error
//     banner and appends to the series, failure only sets the banner
//  3. processTickMsg fires every 4s, and a fetch also fires at once whenever
//     the search query changes
//  4. processResultMsg arrives; success replaces the rows, failure keeps them
//
// Every request carries a per-poller sequence number. A response is applied
// only if it is newer than the last applied one, and process responses issued
// before the latest query change are dropped. Process ticks carry the query
// generation they were scheduled for, so a query change restarts the cadence.
//
// Quitting cancels the session context, which aborts in-flight requests.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh both pollers now
//	/           - Focus the search box (Esc or Enter to leave)
//	1-5, s      - Sort by name/count/CPU/mem/RSS, or cycle; again flips direction
//	j/k, ↑/↓    - Move the cursor
//	Enter       - Expand or collapse the group under the cursor
//	x, then y   - Terminate the process under the cursor
//	?           - Toggle help overlay
package monitor
