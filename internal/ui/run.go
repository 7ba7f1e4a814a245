package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Run shows tbl until the user quits. Notices held by relay are shown first
// and later ones arrive through the program while it runs. relay may be nil.
// Width/height of 0 auto-detect the terminal size.
func Run(ctx context.Context, tbl *grid.Table, relay *Relay, opts Options, width, height int, progOpts ...tea.ProgramOption) error {
	if width > 0 || height > 0 {
		runW, runH := width, height
		if runW <= 0 || runH <= 0 {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if runW <= 0 {
					runW = w
				}
				if runH <= 0 {
					runH = h
				}
			}
		}
		if runW <= 0 {
			runW = 80
		}
		if runH <= 0 {
			runH = 24
		}
		progOpts = append(progOpts, tea.WithWindowSize(runW, runH))
	}
	progOpts = append(progOpts, tea.WithContext(ctx))

	m := NewModel(ctx, tbl, opts)
	prog := tea.NewProgram(m, progOpts...)
	if relay != nil {
		m.initial = append(m.initial, relay.Attach(prog.Send)...)
		defer relay.Detach()
	}
	defer tbl.Close()

	_, err := prog.Run()
	return err
}
