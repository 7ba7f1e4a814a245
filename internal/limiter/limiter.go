// Package limiter windows the loaded rows before they reach the table, so a
// huge input can be narrowed with --limit, --offset and --tail.
package limiter

import "fmt"

// Config holds the windowing flags. Zero values disable each one.
type Config struct {
	Limit  int // keep at most this many rows
	Offset int // skip this many rows first
	Tail   int // keep only the last N rows; Offset is ignored
}

// Validate rejects negative values and --limit combined with --tail.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{{"--limit", c.Limit}, {"--offset", c.Offset}, {"--tail", c.Tail}} {
		if f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, f.v)
		}
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any windowing is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the half-open window [start, end) over n items.
func (c Config) Bounds(n int) (start, end int) {
	if c.Tail > 0 {
		return max(n-c.Tail, 0), n
	}
	start = min(c.Offset, n)
	end = n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}

// Apply returns the window of items selected by c. The result shares the
// backing array with items.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}
