// Package ui is the interactive bubbletea host for a grid.Table.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/ui/table"
	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeFilter
	ModeMove
	ModeConfig
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeFilter:
		return "filter"
	case ModeMove:
		return "move"
	case ModeConfig:
		return "config"
	case ModeHelp:
		return "help"
	default:
		return "normal"
	}
}

// Options configure the interactive view.
type Options struct {
	Title   string
	Theme   config.Theme
	NoColor bool
	// Notices are shown as toasts once the program starts.
	Notices []grid.Notice
}

// Model drives one mounted table from the keyboard.
type Model struct {
	ctx   context.Context
	tbl   *grid.Table
	grid  *table.Model
	input textinput.Model
	res   grid.Result

	mode Mode
	// filterField is the column the filter input edits.
	filterField string
	// inputPrev is restored when the input is cancelled.
	inputPrev   string
	panelCursor int

	toast    *grid.Notice
	toastSeq int
	initial  []grid.Notice

	theme   Theme
	noColor bool
	title   string

	width    int
	height   int
	quitting bool
}

// NewModel wraps tbl, mounting it first when needed.
func NewModel(ctx context.Context, tbl *grid.Table, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if !tbl.Mounted() {
		tbl.Mount(ctx)
	}

	ti := textinput.New()
	ti.CharLimit = 200
	ti.SetWidth(60)

	theme := NewTheme(opts.Theme)
	g := table.New()
	g.SetNoColor(opts.NoColor)
	g.SetColors(theme.Header, theme.Active)

	m := &Model{
		ctx:     ctx,
		tbl:     tbl,
		grid:    g,
		input:   ti,
		theme:   theme,
		noColor: opts.NoColor,
		title:   opts.Title,
		initial: opts.Notices,
		width:   80,
		height:  24,
	}
	m.apply(tbl.View())
	m.layout()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if len(m.initial) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.initial))
	for _, n := range m.initial {
		cmds = append(cmds, func() tea.Msg { return noticeMsg{notice: n} })
	}
	m.initial = nil
	return tea.Sequence(cmds...)
}

// Mode returns the current input mode.
func (m *Model) Mode() Mode { return m.mode }

// Result returns the page on screen.
func (m *Model) Result() grid.Result { return m.res }

// Toast returns the notice in the status bar, if any.
func (m *Model) Toast() (grid.Notice, bool) {
	if m.toast == nil {
		return grid.Notice{}, false
	}
	return *m.toast, true
}

// ActiveField returns the field of the highlighted column.
func (m *Model) ActiveField() string { return m.grid.Active() }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case noticeMsg:
		cmd = m.showToast(msg.notice)
	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	m.layout()
	return m, cmd
}

func (m *Model) apply(res grid.Result) {
	m.res = res
	st := m.tbl.State()
	m.grid.SetDragging(st.Dragging)
	m.grid.SetResult(res, st.Sort)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if isInterrupt(msg) {
		return m.quit()
	}
	switch m.mode {
	case ModeSearch, ModeFilter:
		return m.handleInputKey(msg)
	case ModeMove:
		return m.handleMoveKey(msg)
	case ModeConfig:
		return m.handleConfigKey(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return nil
	}
	return m.handleNormalKey(msg)
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	opts := m.tbl.Options()
	switch ActionFor(msg) {
	case ActionRowUp, ActionRowDown:
		_, cmd := m.grid.Update(msg)
		return cmd
	case ActionColLeft:
		m.grid.MoveActive(-1)
	case ActionColRight:
		m.grid.MoveActive(1)
	case ActionSort:
		col, ok := m.grid.ActiveColumn()
		if !ok {
			return nil
		}
		if !col.Sortable {
			return m.info(fmt.Sprintf("%s is not sortable", col.Header()))
		}
		m.apply(m.tbl.ClickHeader(m.ctx, col.Field))
	case ActionSearch:
		if !opts.GlobalSearch {
			return m.info("Search is disabled for this table")
		}
		return m.openInput(ModeSearch, "search: ", m.tbl.State().Search)
	case ActionFilter:
		col, ok := m.grid.ActiveColumn()
		if !ok {
			return nil
		}
		if !col.Filterable {
			return m.info(fmt.Sprintf("%s is not filterable", col.Header()))
		}
		m.filterField = col.Field
		return m.openInput(ModeFilter, col.Header()+" contains: ", m.tbl.State().Filters[col.Field])
	case ActionNextPage:
		m.apply(m.tbl.NextPage(m.ctx))
	case ActionPrevPage:
		m.apply(m.tbl.PrevPage(m.ctx))
	case ActionFirstPage:
		m.apply(m.tbl.FirstPage(m.ctx))
	case ActionLastPage:
		m.apply(m.tbl.LastPage(m.ctx))
	case ActionBiggerPage, ActionSmallPage:
		if !opts.Pagination {
			return nil
		}
		step := 1
		if ActionFor(msg) == ActionSmallPage {
			step = -1
		}
		res, err := m.tbl.SetPageSize(m.ctx, opts.NextPageSize(m.tbl.State().PageSize, step))
		if err != nil {
			return m.showToast(grid.Notice{Level: grid.LevelError, Message: err.Error()})
		}
		m.apply(res)
	case ActionMove:
		col, ok := m.grid.ActiveColumn()
		if !ok {
			return nil
		}
		m.tbl.DragStart(col.Field)
		m.mode = ModeMove
		m.apply(m.tbl.View())
	case ActionConfig:
		m.mode = ModeConfig
		m.panelCursor = 0
		m.grid.Blur()
	case ActionCopy:
		return m.copyRow()
	case ActionHelp:
		m.mode = ModeHelp
	case ActionDismiss:
		m.toast = nil
	case ActionQuit:
		return m.quit()
	}
	return nil
}

func (m *Model) openInput(mode Mode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.inputPrev = value
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.grid.Blur()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.input.Blur()
	m.mode = ModeNormal
	m.filterField = ""
	m.grid.Focus()
}

// handleInputKey applies search and filter text as it is typed.
func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.closeInput()
		return nil
	case "esc":
		m.applyInput(m.inputPrev)
		m.closeInput()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyInput(m.input.Value())
	return cmd
}

func (m *Model) applyInput(text string) {
	switch m.mode {
	case ModeSearch:
		m.apply(m.tbl.SetSearch(m.ctx, text))
	case ModeFilter:
		if res, err := m.tbl.SetFilter(m.ctx, m.filterField, text); err == nil {
			m.apply(res)
		}
	}
}

// handleMoveKey picks the drop target of a column picked up with m.
func (m *Model) handleMoveKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		m.grid.MoveActive(-1)
	case "right", "l":
		m.grid.MoveActive(1)
	case "enter", "m", "space", " ":
		target := m.grid.Active()
		m.mode = ModeNormal
		m.apply(m.tbl.Drop(m.ctx, target))
	case "esc":
		dragged := m.tbl.State().Dragging
		m.tbl.CancelDrag()
		m.mode = ModeNormal
		m.apply(m.tbl.View())
		m.grid.SetActive(dragged)
	}
	return nil
}

func (m *Model) handleConfigKey(msg tea.KeyMsg) tea.Cmd {
	order := m.tbl.State().Order
	if m.panelCursor >= len(order) {
		m.panelCursor = len(order) - 1
	}
	if m.panelCursor < 0 {
		m.panelCursor = 0
	}
	switch msg.String() {
	case "up", "k":
		if m.panelCursor > 0 {
			m.panelCursor--
		}
	case "down", "j":
		if m.panelCursor < len(order)-1 {
			m.panelCursor++
		}
	case "space", " ", "enter":
		if len(order) == 0 {
			return nil
		}
		res, err := m.tbl.ToggleColumn(m.ctx, order[m.panelCursor])
		if err != nil {
			return m.showToast(grid.Notice{Level: grid.LevelError, Message: err.Error()})
		}
		m.apply(res)
	case "[":
		if m.panelCursor > 0 {
			m.moveColumn(order[m.panelCursor], order[m.panelCursor-1])
			m.panelCursor--
		}
	case "]":
		if m.panelCursor < len(order)-1 {
			m.moveColumn(order[m.panelCursor], order[m.panelCursor+1])
			m.panelCursor++
		}
	case "r":
		m.apply(m.tbl.Reset(m.ctx))
		m.panelCursor = 0
	case "esc", "c", "q":
		m.mode = ModeNormal
		m.grid.Focus()
	}
	return nil
}

func (m *Model) moveColumn(field, target string) {
	if res, err := m.tbl.MoveColumn(m.ctx, field, target); err == nil {
		m.apply(res)
	}
}

func (m *Model) copyRow() tea.Cmd {
	row, ok := m.grid.SelectedRow()
	if !ok {
		return nil
	}
	data, err := json.Marshal(row)
	if err == nil {
		err = CopyToClipboard(string(data))
	}
	if err != nil {
		return m.showToast(grid.Notice{Level: grid.LevelError, Message: "Copy failed: " + err.Error()})
	}
	return m.showToast(grid.Notice{Level: grid.LevelSuccess, Message: "Row copied as JSON"})
}

func (m *Model) info(text string) tea.Cmd {
	return m.showToast(grid.Notice{Level: grid.LevelInfo, Message: text})
}

func (m *Model) showToast(n grid.Notice) tea.Cmd {
	m.toast = &n
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.tbl.Close()
	return tea.Quit
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}
