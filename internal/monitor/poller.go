package monitor

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// metricsTickMsg schedules the next metrics poll.
type metricsTickMsg time.Time

// processTickMsg schedules the next process poll. gen ties the tick to the
// query it was scheduled for; ticks from an older query are dropped.
type processTickMsg struct {
	gen uint64
}

// metricsResultMsg carries the outcome of one metrics request.
type metricsResultMsg struct {
	seq      uint64
	snapshot *Snapshot
	err      error
	at       time.Time
}

// processResultMsg carries the outcome of one process list request.
type processResultMsg struct {
	seq   uint64
	query string
	rows  []ProcessGroup
	err   error
}

// terminateResultMsg carries the outcome of a terminate request.
type terminateResultMsg struct {
	pid int
	err error
}

// pollSeq hands out request sequence numbers for one poller and decides
// which responses may still be applied.
//
// A response is applied only if its number is newer than the last applied
// one and not below floor. Raising floor invalidates everything already in
// flight, which is how a query change retires old process requests.
type pollSeq struct {
	issued  uint64
	applied uint64
	floor   uint64
}

// next returns the number for a new request.
func (p *pollSeq) next() uint64 {
	p.issued++
	return p.issued
}

// accept reports whether the response for seq should be applied and, if so,
// records it as the latest applied.
func (p *pollSeq) accept(seq uint64) bool {
	if seq <= p.applied || seq < p.floor {
		return false
	}
	p.applied = seq
	return true
}

// invalidate retires every request issued so far.
func (p *pollSeq) invalidate() {
	p.floor = p.issued + 1
}

func metricsTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return metricsTickMsg(t)
	})
}

func processTickCmd(interval time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return processTickMsg{gen: gen}
	})
}

func fetchMetricsCmd(ctx context.Context, src Source, seq uint64) tea.Cmd {
	return func() tea.Msg {
		snap, err := src.Metrics(ctx)
		return metricsResultMsg{seq: seq, snapshot: snap, err: err, at: time.Now()}
	}
}

func fetchProcessesCmd(ctx context.Context, src Source, seq uint64, query string) tea.Cmd {
	return func() tea.Msg {
		rows, err := src.Processes(ctx, query)
		return processResultMsg{seq: seq, query: query, rows: rows, err: err}
	}
}

func terminateCmd(ctx context.Context, src Source, pid int) tea.Cmd {
	return func() tea.Msg {
		return terminateResultMsg{pid: pid, err: src.Terminate(ctx, pid)}
	}
}
