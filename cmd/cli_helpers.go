package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/oakwood-commons/gridkit/pkg/grid"
	"github.com/oakwood-commons/gridkit/pkg/settings"
)

// parseAssignment splits "field=text" as used by --filter and --move.
func parseAssignment(flag, s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%s %q: want field=value", flag, s)
	}
	return key, value, nil
}

// defaultStorageKey names the persisted config after the input file. Rows
// read from stdin have no stable name, so they get none.
func defaultStorageKey(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return ""
	}
	base := filepath.Base(args[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveConfigPath returns the explicit path if set, otherwise
// $XDG_CONFIG_HOME/gridkit/config.yaml or ~/.config/gridkit/config.yaml when
// that file exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

// writerNotifier prints notices as single lines, for runs without a TUI.
type writerNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (n *writerNotifier) Notify(notice grid.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s: %s: %s\n", settings.CliBinaryName, notice.Level, notice.Message)
}

// batchClock holds debounced callbacks until Flush, so a one-shot run gets
// its save confirmation before it exits instead of after.
type batchClock struct {
	mu     sync.Mutex
	timers []*batchTimer
}

type batchTimer struct {
	clock   *batchClock
	fn      func()
	stopped bool
}

func (t *batchTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *batchClock) AfterFunc(_ time.Duration, fn func()) grid.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &batchTimer{clock: c, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Flush runs every callback that was not stopped.
func (c *batchClock) Flush() {
	c.mu.Lock()
	var due []func()
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			due = append(due, t.fn)
		}
	}
	c.timers = nil
	c.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}
