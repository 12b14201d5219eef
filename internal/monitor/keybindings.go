package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines the dashboard key bindings.
// It implements help.KeyMap for the footer and the help overlay.
type keyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Search    key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Expand    key.Binding
	Collapse  key.Binding
	CycleSort key.Binding
	SortName  key.Binding
	SortCount key.Binding
	SortCPU   key.Binding
	SortMem   key.Binding
	SortRSS   key.Binding
	Terminate key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Help      key.Binding
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.CycleSort, k.Expand, k.Terminate, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns the binding groups shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Search, k.Expand, k.Collapse, k.Terminate},
		{k.CycleSort, k.SortName, k.SortCount, k.SortCPU, k.SortMem, k.SortRSS},
		{k.Refresh, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
	Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
	Expand:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
	Collapse:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "collapse / close")),
	CycleSort: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next sort column")),
	SortName:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "sort by name")),
	SortCount: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "sort by count")),
	SortCPU:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "sort by CPU%")),
	SortMem:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "sort by Mem%")),
	SortRSS:   key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "sort by RSS")),
	Terminate: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "terminate")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Cancel:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// HandleKeyMsg processes keyboard input and returns the command to run.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	// Help toggle takes priority
	if key.Matches(msg, keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp {
		switch {
		case key.Matches(msg, keys.Collapse):
			m.showHelp = false
			return true, nil
		case key.Matches(msg, keys.Quit):
			return true, m.quit()
		}
		return true, nil
	}

	// A pending terminate swallows everything except its answer
	if m.confirm != nil {
		switch {
		case key.Matches(msg, keys.Confirm):
			entry := *m.confirm
			m.confirm = nil
			m.status = "Terminating " + describeEntry(entry) + "..."
			return true, m.terminate(entry.PID)
		case key.Matches(msg, keys.Cancel):
			m.confirm = nil
			m.status = ""
			return true, nil
		case key.Matches(msg, keys.Quit):
			return true, m.quit()
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return true, m.quit()

	case key.Matches(msg, keys.Refresh):
		return true, tea.Batch(m.pollMetrics(), m.pollProcesses())

	case key.Matches(msg, keys.Search):
		m.searching = true
		return true, m.search.Focus()

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
		return true, nil

	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
		return true, nil

	case key.Matches(msg, keys.PageUp):
		m.moveCursor(-m.pageSize())
		return true, nil

	case key.Matches(msg, keys.PageDown):
		m.moveCursor(m.pageSize())
		return true, nil

	case key.Matches(msg, keys.Top):
		m.cursor = 0
		return true, nil

	case key.Matches(msg, keys.Bottom):
		if len(m.lines) > 0 {
			m.cursor = len(m.lines) - 1
		}
		return true, nil

	case key.Matches(msg, keys.Expand):
		if line, ok := m.currentLine(); ok {
			m.table.ToggleExpand(line.Group.Name)
		}
		return true, nil

	case key.Matches(msg, keys.Collapse):
		if m.table.Expanded() != "" {
			m.table.ToggleExpand(m.table.Expanded())
		}
		return true, nil

	case key.Matches(msg, keys.CycleSort):
		m.table.ToggleSort(m.table.SortKey().Next())
		return true, nil

	case key.Matches(msg, keys.SortName):
		m.table.ToggleSort(SortByName)
		return true, nil

	case key.Matches(msg, keys.SortCount):
		m.table.ToggleSort(SortByCount)
		return true, nil

	case key.Matches(msg, keys.SortCPU):
		m.table.ToggleSort(SortByCPU)
		return true, nil

	case key.Matches(msg, keys.SortMem):
		m.table.ToggleSort(SortByMem)
		return true, nil

	case key.Matches(msg, keys.SortRSS):
		m.table.ToggleSort(SortByRSS)
		return true, nil

	case key.Matches(msg, keys.Terminate):
		line, ok := m.currentLine()
		if !ok || !line.IsChild() {
			m.status = "Select a process row first (enter expands a group)"
			return true, nil
		}
		m.askTerminate(*line.Child)
		return true, nil
	}

	return false, nil
}

// handleSearchKey routes keys to the search box while it has focus.
func (m *Model) handleSearchKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return true, m.quit()
	case tea.KeyEsc, tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return true, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return true, tea.Batch(cmd, m.setQuery(m.search.Value()))
}
