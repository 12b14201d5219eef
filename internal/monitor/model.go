package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
)

// Default poll intervals.
const (
	DefaultMetricsInterval = 2 * time.Second
	DefaultProcessInterval = 4 * time.Second
)

// Options configures a dashboard session.
type Options struct {
	// APIURL is shown in the header. The Source does the actual fetching.
	APIURL          string
	MetricsInterval time.Duration
	ProcessInterval time.Duration
	HistorySize     int
	Thresholds      Thresholds
	// Query is the initial process filter.
	Query string
	// SessionID tags log lines. A random one is generated when empty.
	SessionID string
	Logger    logger.Logger
}

// Model is the Bubble Tea model for one dashboard session.
// All state changes happen in Update; fetches run as commands and report
// back through messages.
type Model struct {
	source  Source
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc
	log     logger.Logger
	session string

	// metrics
	snapshot   *Snapshot
	metricsErr string
	series     *Series
	metricsSeq *pollSeq

	// processes
	table      *ProcessTable
	processSeq *pollSeq
	processGen *uint64
	lines      []TableLine
	cursor     int
	confirm    *ProcessEntry
	status     string

	// widgets
	search    textinput.Model
	searching bool
	spinner   spinner.Model
	viewport  viewport.Model
	help      help.Model
	zones     *zone.Manager

	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewModel creates a dashboard session reading from src. Cancelling ctx, or
// quitting, aborts in-flight requests.
func NewModel(ctx context.Context, src Source, opts Options) Model {
	if opts.MetricsInterval <= 0 {
		opts.MetricsInterval = DefaultMetricsInterval
	}
	if opts.ProcessInterval <= 0 {
		opts.ProcessInterval = DefaultProcessInterval
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	sessionCtx, cancel := context.WithCancel(ctx)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search name / cmdline"
	search.CharLimit = 128
	search.SetValue(opts.Query)

	table := NewProcessTable()
	table.SetQuery(opts.Query)

	gen := uint64(0)

	m := Model{
		source:     src,
		opts:       opts,
		ctx:        sessionCtx,
		cancel:     cancel,
		log:        log,
		session:    opts.SessionID,
		series:     NewSeries(opts.HistorySize),
		metricsSeq: &pollSeq{},
		table:      table,
		processSeq: &pollSeq{},
		processGen: &gen,
		search:     search,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent)),
		),
		viewport: viewport.New(0, 0),
		help:     help.New(),
		zones:    zone.New(),
	}
	m.syncTable()
	return m
}

// Init fires both pollers immediately and schedules their next ticks.
func (m Model) Init() tea.Cmd {
	m.log.Debug("session %s started against %s", m.session, m.opts.APIURL)
	return tea.Batch(
		m.pollMetrics(),
		metricsTickCmd(m.opts.MetricsInterval),
		m.pollProcesses(),
		processTickCmd(m.opts.ProcessInterval, *m.processGen),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg, processResultMsg:
		m.syncTable()
	case metricsResultMsg:
		// cards and the banner can change the space left for rows
		m.layoutTable()
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	if m.quitting {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		_, cmd := m.HandleKeyMsg(msg)
		return cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = m.contentWidth() - 8

	case metricsTickMsg:
		return tea.Batch(metricsTickCmd(m.opts.MetricsInterval), m.pollMetrics())

	case processTickMsg:
		if msg.gen != *m.processGen {
			// scheduled for a query that has since changed
			return nil
		}
		return tea.Batch(processTickCmd(m.opts.ProcessInterval, msg.gen), m.pollProcesses())

	case metricsResultMsg:
		m.applyMetrics(msg)

	case processResultMsg:
		m.applyProcesses(msg)

	case terminateResultMsg:
		if msg.err != nil {
			m.log.Warn("terminate pid %d failed: %s", msg.pid, errors.OneLine(msg.err))
			m.status = fmt.Sprintf("Terminate pid %d failed: %s", msg.pid, errors.OneLine(msg.err))
		} else {
			m.log.Info("terminate pid %d sent", msg.pid)
			m.status = fmt.Sprintf("Sent terminate to pid %d", msg.pid)
		}
		// Re-poll either way so the table reflects what actually happened
		return m.pollProcesses()

	case spinner.TickMsg:
		if m.snapshot != nil {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	return nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.zones.Scan(m.renderDashboard())
}

// pollMetrics issues a metrics request.
func (m *Model) pollMetrics() tea.Cmd {
	return fetchMetricsCmd(m.ctx, m.source, m.metricsSeq.next())
}

// pollProcesses issues a process list request for the current query.
func (m *Model) pollProcesses() tea.Cmd {
	return fetchProcessesCmd(m.ctx, m.source, m.processSeq.next(), m.table.Query())
}

// terminate sends a terminate request for pid.
func (m *Model) terminate(pid int) tea.Cmd {
	return terminateCmd(m.ctx, m.source, pid)
}

// setQuery applies a new filter. A real change retires in-flight process
// requests, fetches right away and restarts the process tick.
func (m *Model) setQuery(q string) tea.Cmd {
	if !m.table.SetQuery(q) {
		return nil
	}
	m.processSeq.invalidate()
	*m.processGen++
	m.cursor = 0
	return tea.Batch(m.pollProcesses(), processTickCmd(m.opts.ProcessInterval, *m.processGen))
}

func (m *Model) applyMetrics(msg metricsResultMsg) {
	if !m.metricsSeq.accept(msg.seq) {
		m.log.Debug("dropping stale metrics response #%d", msg.seq)
		return
	}
	if msg.err != nil {
		m.metricsErr = errors.OneLine(msg.err)
		m.log.Warn("metrics poll #%d failed: %s", msg.seq, m.metricsErr)
		return
	}

	m.snapshot = msg.snapshot
	m.metricsErr = ""
	m.series.Append(msg.snapshot.Point())
}

func (m *Model) applyProcesses(msg processResultMsg) {
	if !m.processSeq.accept(msg.seq) {
		m.log.Debug("dropping stale process response #%d (q=%q)", msg.seq, msg.query)
		return
	}
	// Failures keep the last rows on screen and only reach the log
	if msg.err != nil {
		if errors.IsCode(msg.err, errors.ErrAPI) {
			m.log.Debug("process poll #%d soft failure: %s", msg.seq, errors.OneLine(msg.err))
		} else {
			m.log.Warn("process poll #%d failed: %s", msg.seq, errors.OneLine(msg.err))
		}
		return
	}

	m.table.Replace(msg.rows)
}

// quit tears the session down. In-flight requests are cancelled and any
// result that still arrives is ignored.
func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	m.zones.Close()
	m.log.Debug("session %s ended", m.session)
	return tea.Quit
}

// askTerminate stages a terminate confirmation for entry.
func (m *Model) askTerminate(entry ProcessEntry) {
	m.confirm = &entry
	m.status = "Terminate " + describeEntry(entry) + "? y/n"
}

func describeEntry(e ProcessEntry) string {
	if e.Name == "" {
		return "pid " + strconv.Itoa(e.PID)
	}
	return fmt.Sprintf("pid %d (%s)", e.PID, e.Name)
}

// Snapshot returns the latest metrics snapshot, or nil before the first one.
func (m Model) Snapshot() *Snapshot {
	return m.snapshot
}

// Series returns the graph history.
func (m Model) Series() *Series {
	return m.series
}

// Table returns the process table state.
func (m Model) Table() *ProcessTable {
	return m.table
}

// MetricsError returns the banner text, or "" when the last poll succeeded.
func (m Model) MetricsError() string {
	return m.metricsErr
}

// SessionID returns the id used to tag this session's logs.
func (m Model) SessionID() string {
	return m.session
}

// Context returns the session context. It is cancelled on quit.
func (m Model) Context() context.Context {
	return m.ctx
}
