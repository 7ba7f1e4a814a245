// Package formatter renders a derived grid.Result as a terminal table or as
// csv, json, yaml, markdown or html.
package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridkit/internal/config"
)

const (
	sepWidth    = 2
	minColWidth = 3
	// maxAutoWidth caps a column without a width hint when the table must shrink.
	maxAutoWidth = 40
	ellipsis     = "..."
	defaultWidth = 120
)

// Styles holds the lipgloss styles the table renderer uses.
type Styles struct {
	Header    lipgloss.Style
	Separator lipgloss.Style
	RowNumber lipgloss.Style
	Cell      lipgloss.Style
	Muted     lipgloss.Style
	Pager     lipgloss.Style
}

// NewStyles builds styles from theme colours.
func NewStyles(t config.Theme) Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(colorOr(t.Header, "12")),
		Separator: lipgloss.NewStyle().Foreground(colorOr(t.Border, "8")),
		RowNumber: lipgloss.NewStyle().Foreground(colorOr(t.RowNumber, "8")),
		Cell:      lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle().Foreground(colorOr(t.Muted, "245")).Italic(true),
		Pager:     lipgloss.NewStyle().Foreground(colorOr(t.Active, "10")),
	}
}

// PlainStyles renders without any escape sequences.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Header: s, Separator: s, RowNumber: s, Cell: s, Muted: s, Pager: s}
}

func colorOr(c, fallback string) color.Color {
	if strings.TrimSpace(c) == "" {
		c = fallback
	}
	return lipgloss.Color(c)
}

// TerminalWidth returns the width of stdout, or 120 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// truncate shortens s to width display cells, ending in "..." when there is room.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width < len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(truncate(s, width), width)
}

// CellText flattens line breaks so one row stays on one line.
func CellText(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}
