package ui

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/gridkit/internal/formatter"
	"github.com/oakwood-commons/gridkit/pkg/grid"
)

const minTableHeight = 3

func (m *Model) render() string {
	parts := []string{m.titleLine()}
	if line := m.inputLine(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, m.body())
	if m.res.ShowPager {
		parts = append(parts, style(m.theme.Active, m.noColor).Render(formatter.PagerLine(m.res)))
	}
	switch m.mode {
	case ModeConfig:
		parts = append(parts, m.panelView())
	case ModeHelp:
		parts = append(parts, m.helpView(normalHelp))
	}
	parts = append(parts, m.statusLine())
	return strings.Join(parts, "\n")
}

// layout gives the table whatever height the surrounding lines leave.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	chrome := 2 // title and status
	if m.inputLine() != "" {
		chrome++
	}
	if m.res.ShowPager {
		chrome++
	}
	if len(m.res.Rows) == 0 {
		chrome++
	}
	switch m.mode {
	case ModeConfig:
		chrome += lipgloss.Height(m.panelView())
	case ModeHelp:
		chrome += lipgloss.Height(m.helpView(normalHelp))
	}
	m.grid.SetSize(m.width, max(m.height-chrome, minTableHeight))
}

func (m *Model) titleLine() string {
	title := m.title
	if title == "" {
		title = "gridkit"
	}
	info := fmt.Sprintf("%d of %d rows", m.res.Matched, len(m.tbl.Rows()))
	if s := m.tbl.State().Sort; s != nil {
		if col, ok := m.tbl.Registry().Lookup(s.Key); ok {
			info += fmt.Sprintf(" · sorted by %s %s", col.Header(), s.Direction)
		}
	}
	head := style(m.theme.Header, m.noColor).Bold(!m.noColor).Render(title)
	return head + "  " + style(m.theme.Muted, m.noColor).Render(info)
}

// inputLine is the live input while typing, else a summary of the active
// search and filters.
func (m *Model) inputLine() string {
	if m.mode == ModeSearch || m.mode == ModeFilter {
		return m.input.View()
	}
	st := m.tbl.State()
	var terms []string
	if st.Search != "" {
		terms = append(terms, fmt.Sprintf("search %q", st.Search))
	}
	fields := make([]string, 0, len(st.Filters))
	for f := range st.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		label := f
		if col, ok := m.tbl.Registry().Lookup(f); ok {
			label = col.Header()
		}
		terms = append(terms, fmt.Sprintf("%s contains %q", label, st.Filters[f]))
	}
	if len(terms) == 0 {
		return ""
	}
	return style(m.theme.Muted, m.noColor).Render(strings.Join(terms, " · "))
}

func (m *Model) body() string {
	if len(m.res.Columns) == 0 {
		return style(m.theme.Muted, m.noColor).Render("no visible columns, press c to choose some")
	}
	view := m.grid.View()
	if len(m.res.Rows) == 0 {
		view += "\n" + style(m.theme.Muted, m.noColor).Render("no matching rows")
	}
	return view
}

// panelView lists every column in display order with its visibility.
func (m *Model) panelView() string {
	st := m.tbl.State()
	var b strings.Builder
	b.WriteString(style(m.theme.Header, m.noColor).Render("Columns"))
	for i, field := range st.Order {
		mark := "[ ]"
		if st.IsVisible(field) {
			mark = "[x]"
		}
		label := field
		if col, ok := m.tbl.Registry().Lookup(field); ok {
			label = col.Header()
		}
		line := fmt.Sprintf("  %s %s", mark, label)
		if i == m.panelCursor {
			line = "› " + line[2:]
			line = style(m.theme.Active, m.noColor).Render(line)
		}
		b.WriteString("\n" + line)
	}
	b.WriteString("\n" + m.helpView(configHelp))
	return b.String()
}

func (m *Model) helpView(entries []helpEntry) string {
	keyStyle := style(m.theme.Header, m.noColor)
	descStyle := style(m.theme.Muted, m.noColor)
	width := 0
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.keys))
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		pad := strings.Repeat(" ", width-lipgloss.Width(e.keys))
		lines[i] = "  " + keyStyle.Render(e.keys) + pad + "  " + descStyle.Render(e.desc)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) statusLine() string {
	if m.toast != nil {
		return style(m.theme.noticeColor(m.toast.Level), m.noColor).Render(noticePrefix(m.toast.Level) + m.toast.Message)
	}
	muted := style(m.theme.Muted, m.noColor)
	switch m.mode {
	case ModeSearch, ModeFilter:
		return muted.Render("enter keep · esc cancel")
	case ModeMove:
		return muted.Render(fmt.Sprintf("moving %s: ←/→ choose target · enter drop · esc cancel", m.tbl.State().Dragging))
	case ModeConfig:
		return muted.Render("space toggle · [ ] move · r reset · esc close")
	case ModeHelp:
		return muted.Render("any key closes help")
	}
	return muted.Render("? help · / search · f filter · s sort · c columns · q quit")
}

func noticePrefix(l grid.Level) string {
	switch l {
	case grid.LevelSuccess:
		return "✓ "
	case grid.LevelWarning:
		return "! "
	case grid.LevelError:
		return "✗ "
	default:
		return "i "
	}
}
