package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn describes one column. Right-aligned columns are meant for
// numbers.
type TableColumn struct {
	Title string
	Width int
	Right bool
}

// minFlexWidth is the narrowest FitColumns will squeeze the first column.
const minFlexWidth = 8

// FitColumns returns a copy of columns whose total rendered width fits in
// maxWidth. Only the first column shrinks. maxWidth <= 0 leaves them as is.
func FitColumns(columns []TableColumn, maxWidth int) []TableColumn {
	out := append([]TableColumn(nil), columns...)
	if maxWidth <= 0 || len(out) == 0 {
		return out
	}

	total := 0
	for _, c := range out {
		total += c.Width + 2 // bubbles/table pads each cell by one on both sides
	}
	if over := total - maxWidth; over > 0 {
		out[0].Width -= over
		if out[0].Width < minFlexWidth {
			out[0].Width = minFlexWidth
		}
	}
	return out
}

// NewTable creates a non-interactive bubbles table in the sysdash palette.
// Every row is visible and nothing is highlighted.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: alignCell(c.Title, c), Width: c.Width}
	}

	aligned := make([]table.Row, len(rows))
	for i, row := range rows {
		r := make(table.Row, len(row))
		for j, cell := range row {
			if j < len(columns) {
				cell = alignCell(cell, columns[j])
			}
			r[j] = cell
		}
		aligned[i] = r
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(aligned),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorNeonCyan)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// alignCell pads right-aligned cells on the left. Cells wider than the column
// are left for the table to truncate.
func alignCell(cell string, c TableColumn) string {
	if !c.Right {
		return cell
	}
	if pad := c.Width - lipgloss.Width(cell); pad > 0 {
		return strings.Repeat(" ", pad) + cell
	}
	return cell
}

// RenderSimpleTable renders rows as a static table string without a trailing
// newline. It returns "" when there are no rows.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return strings.TrimRight(NewTable(columns, tableRows).View(), "\n")
}
