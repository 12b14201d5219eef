package monitor

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey is a process table column that rows can be ordered by.
type SortKey int

const (
	SortByName SortKey = iota
	SortByCount
	SortByCPU
	SortByMem
	SortByRSS
)

// SortKeys lists the columns in display order.
var SortKeys = []SortKey{SortByName, SortByCount, SortByCPU, SortByMem, SortByRSS}

// String returns the wire name of the key.
func (k SortKey) String() string {
	switch k {
	case SortByName:
		return "name"
	case SortByCount:
		return "count"
	case SortByCPU:
		return "cpu"
	case SortByMem:
		return "mem"
	case SortByRSS:
		return "rss"
	default:
		return "cpu"
	}
}

// Next cycles to the next column.
func (k SortKey) Next() SortKey {
	return SortKey((int(k) + 1) % len(SortKeys))
}

// Label returns the column header.
func (k SortKey) Label() string {
	switch k {
	case SortByName:
		return "Name"
	case SortByCount:
		return "Count"
	case SortByCPU:
		return "CPU%"
	case SortByMem:
		return "Mem%"
	case SortByRSS:
		return "RSS"
	default:
		return ""
	}
}

// ParseSortKey parses one of name, count, cpu, mem, rss.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return SortByCPU, fmt.Errorf("unknown sort key %q (want one of name, count, cpu, mem, rss)", s)
}

// TableLine is one visible line of the process table: either a group row or,
// under the expanded group, one of its children.
type TableLine struct {
	Group ProcessGroup
	Child *ProcessEntry
}

// IsChild reports whether the line is a child row.
func (l TableLine) IsChild() bool {
	return l.Child != nil
}

// ProcessTable holds the process list and how it is presented.
// Rows are only ever replaced wholesale; sorting works on a copy.
type ProcessTable struct {
	rows     []ProcessGroup
	query    string
	sortKey  SortKey
	sortAsc  bool
	expanded string
}

// NewProcessTable returns an empty table sorted by CPU, highest first.
func NewProcessTable() *ProcessTable {
	return &ProcessTable{sortKey: SortByCPU}
}

// Replace swaps in a new row set from a successful poll.
func (t *ProcessTable) Replace(rows []ProcessGroup) {
	if rows == nil {
		rows = []ProcessGroup{}
	}
	t.rows = rows
}

// Rows returns the rows in server order.
func (t *ProcessTable) Rows() []ProcessGroup {
	return t.rows
}

// Query returns the current filter text.
func (t *ProcessTable) Query() string {
	return t.query
}

// SetQuery updates the filter text and reports whether it changed.
func (t *ProcessTable) SetQuery(q string) bool {
	if q == t.query {
		return false
	}
	t.query = q
	return true
}

// SortKey returns the active sort column.
func (t *ProcessTable) SortKey() SortKey {
	return t.sortKey
}

// SortAsc reports whether the sort is ascending.
func (t *ProcessTable) SortAsc() bool {
	return t.sortAsc
}

// SetSort sets the sort column and direction directly.
func (t *ProcessTable) SetSort(key SortKey, asc bool) {
	t.sortKey = key
	t.sortAsc = asc
}

// ToggleSort flips the direction when key is already active. Otherwise it
// switches to key, descending.
func (t *ProcessTable) ToggleSort(key SortKey) {
	if t.sortKey == key {
		t.sortAsc = !t.sortAsc
		return
	}
	t.sortKey = key
	t.sortAsc = false
}

// SortedRows returns the rows ordered by the active column. Equal rows keep
// their server order. The stored rows are not modified.
func (t *ProcessTable) SortedRows() []ProcessGroup {
	return SortGroups(t.rows, t.sortKey, t.sortAsc)
}

// SortGroups returns a stably sorted copy of rows.
func SortGroups(rows []ProcessGroup, key SortKey, asc bool) []ProcessGroup {
	out := make([]ProcessGroup, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		c := compareGroups(out[i], out[j], key)
		if asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func compareGroups(a, b ProcessGroup, key SortKey) int {
	if key == SortByName {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
	va, vb := sortValue(a, key), sortValue(b, key)
	switch {
	case va < vb:
		return -1
	case va > vb:
		return 1
	default:
		return 0
	}
}

func sortValue(g ProcessGroup, key SortKey) float64 {
	switch key {
	case SortByCount:
		return float64(g.Count)
	case SortByCPU:
		return g.CPU
	case SortByMem:
		return g.Mem
	case SortByRSS:
		return float64(g.RSS)
	default:
		return 0
	}
}

// ToggleExpand collapses name if it is the expanded group, otherwise expands
// it in place of whatever was open.
func (t *ProcessTable) ToggleExpand(name string) {
	if t.expanded == name {
		t.expanded = ""
		return
	}
	t.expanded = name
}

// Expanded returns the expanded group name, or "" when none is open.
func (t *ProcessTable) Expanded() string {
	return t.expanded
}

// Lines flattens the sorted rows into what the table shows, with the
// children of the expanded group inserted after it.
func (t *ProcessTable) Lines() []TableLine {
	sorted := t.SortedRows()
	lines := make([]TableLine, 0, len(sorted))
	for _, g := range sorted {
		lines = append(lines, TableLine{Group: g})
		if t.expanded == "" || g.Name != t.expanded {
			continue
		}
		for i := range g.Children {
			lines = append(lines, TableLine{Group: g, Child: &g.Children[i]})
		}
	}
	return lines
}
