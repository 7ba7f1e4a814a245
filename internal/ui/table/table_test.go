package table

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

func sampleResult() grid.Result {
	return grid.Result{
		Rows: []grid.Row{
			{"name": "apple", "color": "red"},
			{"name": "banana", "color": "yellow"},
		},
		Columns: []grid.Column{
			{Field: "name", HeaderName: "Name"},
			{Field: "color", HeaderName: "Color"},
		},
		Matched:    2,
		Page:       1,
		TotalPages: 1,
		PageSize:   10,
	}
}

func TestTable_SetResultAndSelection(t *testing.T) {
	m := New()
	m.SetSize(60, 8)
	m.SetResult(sampleResult(), nil)

	row, ok := m.SelectedRow()
	if !ok || row["name"] != "apple" {
		t.Fatalf("expected first row selected, got %v", row)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	row, ok = m.SelectedRow()
	if !ok || row["name"] != "banana" {
		t.Fatalf("expected second row after down, got %v", row)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Cursor() > 1 {
		t.Fatalf("cursor out of bounds: %d", m.Cursor())
	}
}

func TestTable_ActiveColumn(t *testing.T) {
	m := New()
	m.SetResult(sampleResult(), nil)

	if got := m.Active(); got != "name" {
		t.Fatalf("expected name active, got %q", got)
	}
	m.MoveActive(1)
	if got := m.Active(); got != "color" {
		t.Fatalf("expected color active, got %q", got)
	}
	m.MoveActive(5)
	if got := m.Active(); got != "color" {
		t.Fatalf("active should stop at the last column, got %q", got)
	}
	m.SetActive("name")
	if got := m.Active(); got != "name" {
		t.Fatalf("expected name after SetActive, got %q", got)
	}

	// a narrower result pulls the active column back in range
	m.MoveActive(1)
	res := sampleResult()
	res.Columns = res.Columns[:1]
	m.SetResult(res, nil)
	if got := m.Active(); got != "name" {
		t.Fatalf("expected active clamped to name, got %q", got)
	}

	res.Columns = nil
	m.SetResult(res, nil)
	if _, ok := m.ActiveColumn(); ok {
		t.Fatal("no column should be active without visible columns")
	}
}

func TestTable_HeaderMarkers(t *testing.T) {
	m := New()
	m.SetNoColor(true)
	m.SetSize(60, 8)
	m.SetResult(sampleResult(), &grid.SortState{Key: "color", Direction: grid.Desc})

	view := m.View()
	if !strings.Contains(view, activeMarker+"Name") {
		t.Fatalf("expected active marker on Name, got:\n%s", view)
	}
	if !strings.Contains(view, "Color ▼") {
		t.Fatalf("expected desc indicator on Color, got:\n%s", view)
	}

	m.SetDragging("color")
	if !strings.Contains(m.View(), draggedMarker+"Color") {
		t.Fatalf("expected drag marker on Color, got:\n%s", m.View())
	}
}

func TestTable_SizeFocus(t *testing.T) {
	m := New()
	m.SetResult(sampleResult(), nil)
	m.SetSize(40, 6)
	if m.Height() <= 0 {
		t.Fatalf("expected non-zero height, got %d", m.Height())
	}

	m.Blur()
	if m.Focused() {
		t.Fatal("expected blurred table")
	}
	m.Focus()
	if !m.Focused() {
		t.Fatal("expected focused table")
	}
	if !strings.Contains(m.String(), "rows=2") {
		t.Fatalf("unexpected debug string %q", m.String())
	}
}
