// Package tui is the public entry point for hosting a grid.Table in a
// terminal, interactively or as a one-shot rendering.
package tui

import (
	"context"
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/formatter"
	"github.com/oakwood-commons/gridkit/internal/ui"
	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// Relay forwards gateway notices into the running program. Pass it to
// grid.WithNotifier when building the table's gateway and to Config.Relay.
type Relay = ui.Relay

// NewRelay returns an empty relay.
func NewRelay() *Relay { return &ui.Relay{} }

// Theme holds colour names or numbers (lipgloss syntax). Blank entries use
// the stock palette.
type Theme struct {
	Header    string
	Border    string
	RowNumber string
	Active    string
	Muted     string
	Info      string
	Success   string
	Warning   string
	Error     string
}

// Config controls how a table is hosted.
type Config struct {
	Title   string
	Theme   Theme
	NoColor bool
	// Width/Height of 0 auto-detect the terminal size.
	Width  int
	Height int
	Relay  *Relay
}

func (c Config) theme() config.Theme {
	return config.Theme{
		Header:    c.Theme.Header,
		Border:    c.Theme.Border,
		RowNumber: c.Theme.RowNumber,
		Active:    c.Theme.Active,
		Muted:     c.Theme.Muted,
		Info:      c.Theme.Info,
		Success:   c.Theme.Success,
		Warning:   c.Theme.Warning,
		Error:     c.Theme.Error,
	}
}

func (c Config) uiOptions() ui.Options {
	return ui.Options{
		Title:   c.Title,
		Theme:   c.theme(),
		NoColor: c.NoColor,
	}
}

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS environment variable.
// If detection fails completely, returns (120, 24).
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Run mounts tbl if needed and drives it from the keyboard until the user
// quits. The table is closed on return.
func Run(ctx context.Context, tbl *grid.Table, cfg Config, opts ...tea.ProgramOption) error {
	return ui.Run(ctx, tbl, cfg.Relay, cfg.uiOptions(), cfg.Width, cfg.Height, opts...)
}

// Snapshot renders the current page of tbl as plain text, pager included,
// without starting a program. An unmounted table is mounted first.
func Snapshot(ctx context.Context, tbl *grid.Table, cfg Config) string {
	if !tbl.Mounted() {
		tbl.Mount(ctx)
	}
	width := cfg.Width
	if width <= 0 {
		width, _ = DetectTerminalSize()
	}
	styles := formatter.PlainStyles()
	if !cfg.NoColor {
		styles = formatter.NewStyles(cfg.theme())
	}
	return formatter.RenderTable(tbl.View(), formatter.TableOptions{
		Width:  width,
		Sort:   tbl.State().Sort,
		Styles: styles,
	})
}

// WithIO returns program options that read keys from in and draw to out.
// Nil values are skipped.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	var opts []tea.ProgramOption
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
