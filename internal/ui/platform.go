package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// copyToClipboardFn is swapped out by tests so nothing reaches the real clipboard.
var copyToClipboardFn = copyToClipboardImpl

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// StubClipboard replaces the clipboard with a recorder and returns a restore
// function. The recorder keeps the last text copied.
func StubClipboard(last *string) (restore func()) {
	orig := copyToClipboardFn
	copyToClipboardFn = func(text string) error {
		if last != nil {
			*last = text
		}
		return nil
	}
	return func() { copyToClipboardFn = orig }
}

func clipboardCommand(ctx context.Context) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "pbcopy"), nil
	case "windows":
		return exec.CommandContext(ctx, "clip"), nil
	case "linux":
		// xclip, then xsel, then wl-copy (Wayland)
		candidates := [][]string{
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
			{"wl-copy"},
		}
		for _, c := range candidates {
			if _, err := exec.LookPath(c[0]); err == nil {
				return exec.CommandContext(ctx, c[0], c[1:]...), nil
			}
		}
		return nil, fmt.Errorf("no clipboard command found (install xclip, xsel, or wl-clipboard)")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func copyToClipboardImpl(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd, err := clipboardCommand(ctx)
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
