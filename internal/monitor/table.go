package monitor

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Process table column widths
const (
	colMarker = 2
	colCount  = 7
	colPct    = 7
	colRSS    = 10
	colAction = 11
	colGap    = 1

	minNameWidth     = 10
	defaultTableRows = 12

	// section header, search box, column header, bottom border
	tableChromeHeight = 4
	statusHeight      = 1
	footerHeight      = 2

	terminateLabel = "[terminate]"
	searchZoneID   = "search"
)

func sortZoneID(k SortKey) string { return "sort:" + k.String() }
func lineZoneID(i int) string     { return "line:" + strconv.Itoa(i) }
func killZoneID(pid int) string   { return "kill:" + strconv.Itoa(pid) }

// nameWidth is whatever the fixed columns leave over.
func (m Model) nameWidth() int {
	inner := m.contentWidth() - 4
	w := inner - colMarker - colCount - 2*colPct - colRSS - colAction - 5*colGap
	if w < minNameWidth {
		w = minNameWidth
	}
	return w
}

// tableBodyHeight is the number of process rows that fit on screen.
func (m Model) tableBodyHeight() int {
	if m.height == 0 {
		return defaultTableRows
	}
	used := lipgloss.Height(m.renderTop()) + tableChromeHeight + statusHeight + footerHeight
	h := m.height - used
	if h < 3 {
		h = 3
	}
	return h
}

// syncTable rebuilds the visible lines after a change to rows, sort,
// expansion, cursor or size. The cursor stays on the same row where possible.
func (m *Model) syncTable() {
	if m.quitting {
		return
	}

	prev, hadPrev := m.currentLine()
	m.lines = m.table.Lines()
	if hadPrev {
		m.cursor = findLine(m.lines, prev, m.cursor)
	}
	m.clampCursor()

	m.sizeViewport()
	m.viewport.SetContent(m.renderTableBody())
	m.scrollToCursor()
}

// layoutTable resizes the row area without rebuilding it.
func (m *Model) layoutTable() {
	if m.quitting {
		return
	}
	m.sizeViewport()
	m.scrollToCursor()
}

func (m *Model) sizeViewport() {
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = m.tableBodyHeight()
}

func (m *Model) scrollToCursor() {
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// findLine locates prev in lines: the same row, else its group, else the
// old index.
func findLine(lines []TableLine, prev TableLine, fallback int) int {
	groupIdx := -1
	for i, l := range lines {
		if l.Group.Name != prev.Group.Name {
			continue
		}
		if !l.IsChild() && groupIdx < 0 {
			groupIdx = i
		}
		switch {
		case !prev.IsChild() && !l.IsChild():
			return i
		case prev.IsChild() && l.IsChild() && l.Child.PID == prev.Child.PID:
			return i
		}
	}
	if groupIdx >= 0 {
		return groupIdx
	}
	return fallback
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m Model) pageSize() int {
	if m.viewport.Height > 1 {
		return m.viewport.Height - 1
	}
	return 1
}

// currentLine returns the line under the cursor.
func (m Model) currentLine() (TableLine, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return TableLine{}, false
	}
	return m.lines[m.cursor], true
}

// renderProcessSection renders the search box, the column header and the
// scrollable rows inside a section frame.
func (m Model) renderProcessSection() string {
	width := m.contentWidth()

	summary := fmt.Sprintf("%d groups", len(m.table.Rows()))
	if m.table.Query() != "" {
		summary += fmt.Sprintf(" matching %q", m.table.Query())
	}

	lines := []string{
		SectionHeader("Processes", MutedStyle.Render(summary), width),
		SectionContentLine(m.zones.Mark(searchZoneID, m.search.View()), width),
		SectionContentLine(m.renderColumnHeader(), width),
		m.viewport.View(),
		SectionFooter(width),
	}
	return strings.Join(lines, "\n")
}

// renderColumnHeader renders the clickable column titles. The active one
// carries the direction arrow.
func (m Model) renderColumnHeader() string {
	cell := func(k SortKey, width int, right bool) string {
		label := k.Label()
		style := TableHeaderStyle
		if m.table.SortKey() == k {
			style = TableActiveHeaderStyle
			if m.table.SortAsc() {
				label += " ↑"
			} else {
				label += " ↓"
			}
		}
		return m.zones.Mark(sortZoneID(k), style.Render(align(label, width, right)))
	}

	gap := strings.Repeat(" ", colGap)
	return strings.Repeat(" ", colMarker) +
		cell(SortByName, m.nameWidth(), false) + gap +
		cell(SortByCount, colCount, true) + gap +
		cell(SortByCPU, colPct, true) + gap +
		cell(SortByMem, colPct, true) + gap +
		cell(SortByRSS, colRSS, true)
}

// renderTableBody renders every visible line, framed, for the viewport.
func (m Model) renderTableBody() string {
	width := m.contentWidth()

	if len(m.lines) == 0 {
		msg := "Waiting for the process list..."
		if m.table.Rows() != nil {
			msg = "No processes match"
		}
		return SectionContentLine(MutedStyle.Render(msg), width)
	}

	out := make([]string, len(m.lines))
	for i, line := range m.lines {
		out[i] = SectionContentLine(m.renderLine(i, line), width)
	}
	return strings.Join(out, "\n")
}

// renderLine renders a group row or a child row.
func (m Model) renderLine(i int, line TableLine) string {
	gap := strings.Repeat(" ", colGap)
	nameW := m.nameWidth()
	selected := i == m.cursor

	var text, action string
	style := lipgloss.NewStyle()

	if !line.IsChild() {
		g := line.Group
		marker := "  "
		if len(g.Children) > 0 {
			if m.table.Expanded() == g.Name {
				marker = "▼ "
			} else {
				marker = "▶ "
			}
		}
		text = marker +
			align(truncate(g.Name, nameW), nameW, false) + gap +
			align(strconv.Itoa(g.Count), colCount, true) + gap +
			align(fmt.Sprintf("%.1f", g.CPU), colPct, true) + gap +
			align(fmt.Sprintf("%.1f", g.Mem), colPct, true) + gap +
			align(FormatBytes(g.RSS), colRSS, true)
		action = strings.Repeat(" ", colAction)
	} else {
		c := line.Child
		// The child name spans the count, CPU and mem columns
		spanW := colCount + 2*colPct + 2*colGap
		text = strings.Repeat(" ", colMarker) +
			align(truncate("  └ "+strconv.Itoa(c.PID), nameW), nameW, false) + gap +
			align(truncate(c.Name, spanW), spanW, false) + gap +
			align(FormatBytes(c.RSS), colRSS, true)
		style = TableChildStyle
		action = m.zones.Mark(killZoneID(c.PID), TerminateButtonStyle.Render(terminateLabel))
	}

	if selected {
		style = TableSelectedStyle
	}
	return m.zones.Mark(lineZoneID(i), style.Render(text)) + gap + action
}

// handleMouse handles clicks on headers, rows and terminate buttons, and
// wheel scrolling over the table.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.showHelp || m.confirm != nil {
		return nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-1)
		return nil
	case tea.MouseButtonWheelDown:
		m.moveCursor(1)
		return nil
	}

	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	for _, k := range SortKeys {
		if m.inZone(sortZoneID(k), msg) {
			m.table.ToggleSort(k)
			return nil
		}
	}

	if m.inZone(searchZoneID, msg) {
		m.searching = true
		return m.search.Focus()
	}

	start := m.viewport.YOffset
	end := start + m.viewport.Height
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := start; i < end; i++ {
		line := m.lines[i]
		if line.IsChild() && m.inZone(killZoneID(line.Child.PID), msg) {
			m.cursor = i
			m.askTerminate(*line.Child)
			return nil
		}
		if m.inZone(lineZoneID(i), msg) {
			m.cursor = i
			if !line.IsChild() {
				m.table.ToggleExpand(line.Group.Name)
			}
			return nil
		}
	}
	return nil
}

func (m Model) inZone(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

// align pads s to width, on the left when right is set.
func align(s string, width int, right bool) string {
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}

// truncate shortens s to maxLen runes, ending with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
