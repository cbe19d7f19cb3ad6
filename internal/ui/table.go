package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RowStyle picks a style for the data row at index; the zero Style leaves the row plain
type RowStyle func(index int, row []string) lipgloss.Style

// Table collects rows for rendering as a bordered terminal table
type Table struct {
	Title   string
	Headers []string

	rows     [][]string
	rowStyle RowStyle
}

// NewTable creates a table with the given column headers
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow appends a row; missing cells render empty
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// StyleRows sets the style function applied to data rows
func (t *Table) StyleRows(fn RowStyle) {
	t.rowStyle = fn
}

// Len is the number of data rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render draws the table with s
func (t *Table) Render(s Styles) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers(t.Headers...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			if t.rowStyle != nil && row >= 0 && row < len(t.rows) {
				return t.rowStyle(row, t.rows[row]).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	if t.Title == "" {
		return tbl.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(t.Title), tbl.String())
}
