package grid

// CellErrorMarker replaces the text of a cell whose renderer or formatter panicked.
const CellErrorMarker = "#ERR"

// RenderCell resolves the display text for one cell: CellRenderer first, then
// ValueFormatter on the raw value, then the raw value itself. A panic in host
// code is contained to the cell.
func RenderCell(row Row, col Column) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = CellErrorMarker
		}
	}()
	switch {
	case col.CellRenderer != nil:
		return col.CellRenderer(row)
	case col.ValueFormatter != nil:
		return col.ValueFormatter(row[col.Field])
	default:
		return Text(row[col.Field])
	}
}

// Headers returns the header labels of the projected columns.
func (r Result) Headers() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Header()
	}
	return out
}

// Fields returns the field keys of the projected columns.
func (r Result) Fields() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Field
	}
	return out
}

// Cells renders the page body as text, one slice per row.
func (r Result) Cells() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for j, col := range r.Columns {
			cells[j] = RenderCell(row, col)
		}
		out[i] = cells
	}
	return out
}
