package grid

import (
	"sync"
	"time"
)

func peopleRegistry() *Registry {
	return MustRegistry(
		Column{Field: "name", HeaderName: "Name", Sortable: true, Filterable: true},
		Column{Field: "age", HeaderName: "Age", Sortable: true},
	)
}

func peopleRows() []Row {
	return []Row{
		{"name": "Ana", "age": 30},
		{"name": "Beto", "age": 25},
		{"name": "Ana", "age": 20},
	}
}

func clientRegistry() *Registry {
	return MustRegistry(
		Column{Field: "id", HeaderName: "ID", Sortable: true},
		Column{Field: "client", HeaderName: "Client", Sortable: true, Filterable: true},
		Column{Field: "status", HeaderName: "Status", Filterable: true},
		Column{Field: "notes", HeaderName: "Notes", HiddenByDefault: true},
	)
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = Text(r["name"])
	}
	return out
}

// manualClock schedules timers that only run when Fire is called.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *manualClock) AfterFunc(_ time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Fire runs every timer that is neither stopped nor already fired.
func (c *manualClock) Fire() int {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Scheduled counts every timer ever created.
func (c *manualClock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
