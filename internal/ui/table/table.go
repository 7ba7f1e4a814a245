// Package table wraps the bubbles table for one derived page of a grid.
package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/gridkit/internal/formatter"
	"github.com/oakwood-commons/gridkit/pkg/grid"
)

const (
	activeMarker  = "›"
	draggedMarker = "✥"
)

// Model shows the rows of a grid.Result and tracks which column is active.
type Model struct {
	table  bubtable.Model
	styles bubtable.Styles
	res    grid.Result
	sort   *grid.SortState

	// active is the index of the highlighted column in res.Columns.
	active   int
	dragging string

	width   int
	height  int
	noColor bool

	headerFG   color.Color
	selectedFG color.Color
}

// New creates an empty focused table.
func New() *Model {
	t := bubtable.New(
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	return &Model{
		table:  t,
		styles: s,
		width:  80,
		height: 10,
	}
}

// SetResult replaces the page shown. The active column is kept in range.
func (m *Model) SetResult(res grid.Result, sort *grid.SortState) {
	m.res = res
	m.sort = sort
	m.clampActive()
	m.rebuild()
}

// Result returns the page currently shown.
func (m *Model) Result() grid.Result {
	return m.res
}

// SetDragging marks field as picked up; empty clears the marker.
func (m *Model) SetDragging(field string) {
	m.dragging = field
	m.rebuild()
}

// Active returns the field of the active column, or "" when none is visible.
func (m *Model) Active() string {
	if m.active < 0 || m.active >= len(m.res.Columns) {
		return ""
	}
	return m.res.Columns[m.active].Field
}

// ActiveColumn returns the active column.
func (m *Model) ActiveColumn() (grid.Column, bool) {
	if m.active < 0 || m.active >= len(m.res.Columns) {
		return grid.Column{}, false
	}
	return m.res.Columns[m.active], true
}

// MoveActive shifts the active column by delta, stopping at the edges.
func (m *Model) MoveActive(delta int) {
	m.active += delta
	m.clampActive()
	m.rebuild()
}

// SetActive makes field the active column when it is visible.
func (m *Model) SetActive(field string) {
	for i, c := range m.res.Columns {
		if c.Field == field {
			m.active = i
			m.rebuild()
			return
		}
	}
}

func (m *Model) clampActive() {
	if m.active >= len(m.res.Columns) {
		m.active = len(m.res.Columns) - 1
	}
	if m.active < 0 {
		m.active = 0
	}
}

func (m *Model) rebuild() {
	headers := m.res.Headers()
	for i, c := range m.res.Columns {
		headers[i] += indicator(c.Field, m.sort)
		switch {
		case c.Field == m.dragging:
			headers[i] = draggedMarker + headers[i]
		case i == m.active:
			headers[i] = activeMarker + headers[i]
		}
	}
	cells := m.res.Cells()
	for _, row := range cells {
		for i := range row {
			row[i] = formatter.CellText(row[i])
		}
	}
	widths := formatter.ColumnWidths(headers, cells, m.res.Columns, m.width)

	cols := make([]bubtable.Column, len(headers))
	for i, h := range headers {
		cols[i] = bubtable.Column{Title: h, Width: widths[i]}
	}
	rows := make([]bubtable.Row, len(cells))
	for i, r := range cells {
		rows[i] = bubtable.Row(r)
	}
	// columns first: bubbles renders rows against the current column count
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.Cursor() >= len(rows) && len(rows) > 0 {
		m.SetCursor(len(rows) - 1)
	}
	m.applyColorScheme()
}

func indicator(field string, s *grid.SortState) string {
	if s == nil || s.Key != field {
		return ""
	}
	if s.Direction == grid.Desc {
		return formatter.DescIndicator
	}
	return formatter.AscIndicator
}

// Cursor returns the selected row index within the page.
func (m *Model) Cursor() int {
	return m.table.Cursor()
}

// SetCursor moves the row selection.
func (m *Model) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the raw row under the cursor.
func (m *Model) SelectedRow() (grid.Row, bool) {
	c := m.Cursor()
	if c < 0 || c >= len(m.res.Rows) {
		return nil, false
	}
	return m.res.Rows[c], true
}

// SetSize sets the table dimensions. Height includes the header.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(height)
	m.rebuild()
}

// Focus sets the table focus state.
func (m *Model) Focus() { m.table.Focus() }

// Blur removes focus from the table.
func (m *Model) Blur() { m.table.Blur() }

// Focused returns true if the table has focus.
func (m *Model) Focused() bool { return m.table.Focused() }

// SetNoColor enables/disables color output.
func (m *Model) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets the header and selected row colours.
func (m *Model) SetColors(headerFG, selectedFG color.Color) {
	m.headerFG = headerFG
	m.selectedFG = selectedFG
	m.applyColorScheme()
}

func (m *Model) applyColorScheme() {
	s := m.styles
	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
	}
	m.table.SetStyles(s)
	m.styles = s
}

// Update handles row navigation keys.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table to a string.
func (m *Model) View() string {
	return m.table.View()
}

// Height returns the rendered height of the table (including header).
func (m *Model) Height() int {
	return lipgloss.Height(m.View())
}

func (m *Model) String() string {
	return fmt.Sprintf("Table[rows=%d, columns=%d, cursor=%d, active=%q]",
		len(m.res.Rows), len(m.res.Columns), m.Cursor(), m.Active())
}
