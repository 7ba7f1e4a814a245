package ui

import (
	tea "charm.land/bubbletea/v2"
)

// Action is what a key does in normal mode.
type Action string

const (
	ActionNone       Action = ""
	ActionRowUp      Action = "row_up"
	ActionRowDown    Action = "row_down"
	ActionColLeft    Action = "col_left"
	ActionColRight   Action = "col_right"
	ActionSort       Action = "sort"
	ActionSearch     Action = "search"
	ActionFilter     Action = "filter"
	ActionNextPage   Action = "next_page"
	ActionPrevPage   Action = "prev_page"
	ActionFirstPage  Action = "first_page"
	ActionLastPage   Action = "last_page"
	ActionBiggerPage Action = "page_size_up"
	ActionSmallPage  Action = "page_size_down"
	ActionMove       Action = "move"
	ActionConfig     Action = "config"
	ActionCopy       Action = "copy"
	ActionHelp       Action = "help"
	ActionDismiss    Action = "dismiss"
	ActionQuit       Action = "quit"
)

// KeyBindings maps key strings to normal-mode actions.
var KeyBindings = map[string]Action{
	"up":     ActionRowUp,
	"k":      ActionRowUp,
	"down":   ActionRowDown,
	"j":      ActionRowDown,
	"left":   ActionColLeft,
	"h":      ActionColLeft,
	"right":  ActionColRight,
	"l":      ActionColRight,
	"s":      ActionSort,
	"enter":  ActionSort,
	"/":      ActionSearch,
	"f":      ActionFilter,
	"n":      ActionNextPage,
	"p":      ActionPrevPage,
	"g":      ActionFirstPage,
	"G":      ActionLastPage,
	"+":      ActionBiggerPage,
	"=":      ActionBiggerPage,
	"-":      ActionSmallPage,
	"m":      ActionMove,
	"c":      ActionConfig,
	"y":      ActionCopy,
	"?":      ActionHelp,
	"esc":    ActionDismiss,
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
}

// ActionFor resolves a key press to its normal-mode action.
func ActionFor(msg tea.KeyMsg) Action {
	if isInterrupt(msg) {
		return ActionQuit
	}
	return KeyBindings[msg.String()]
}

func isInterrupt(msg tea.KeyMsg) bool {
	return msg.String() == "ctrl+c" || msg.Key().Code == 0x03
}

// helpEntry is one line of the help overlay.
type helpEntry struct {
	keys string
	desc string
}

var normalHelp = []helpEntry{
	{"↑/↓ j/k", "move row"},
	{"←/→ h/l", "move active column"},
	{"s enter", "sort by active column"},
	{"/", "search all fields"},
	{"f", "filter active column"},
	{"n p g G", "next, previous, first, last page"},
	{"+ -", "change page size"},
	{"m", "pick up column, then move and drop with enter"},
	{"c", "column settings"},
	{"y", "copy row as JSON"},
	{"q", "quit"},
}

var configHelp = []helpEntry{
	{"↑/↓", "select column"},
	{"space", "show or hide"},
	{"[ ]", "move earlier or later"},
	{"r", "reset to default"},
	{"esc c", "close"},
}
