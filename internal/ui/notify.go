package ui

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// toastTTL is how long a notice stays in the status bar.
const toastTTL = 4 * time.Second

type noticeMsg struct {
	notice grid.Notice
}

type clearToastMsg struct {
	seq int
}

// Relay is a grid.Notifier that forwards notices into a running program.
// Notices raised before a program is attached are held until Attach.
type Relay struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []grid.Notice
}

// Notify delivers n to the attached program, or holds it. It may be called
// from the gateway's timer goroutine.
func (r *Relay) Notify(n grid.Notice) {
	r.mu.Lock()
	send := r.send
	if send == nil {
		r.pending = append(r.pending, n)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	send(noticeMsg{notice: n})
}

// Attach routes later notices to send and returns the held ones.
func (r *Relay) Attach(send func(tea.Msg)) []grid.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	held := r.pending
	r.pending = nil
	r.send = send
	return held
}

// Detach stops forwarding; later notices are held again.
func (r *Relay) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = nil
}

// Pending returns the notices held while detached.
func (r *Relay) Pending() []grid.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]grid.Notice(nil), r.pending...)
}
