package grid

import "sync"

// Level is the severity of a user-facing notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// NoticeKind identifies why a notice was raised.
type NoticeKind string

const (
	NoticeSaved        NoticeKind = "saved"
	NoticeSaveFailed   NoticeKind = "save_failed"
	NoticeReset        NoticeKind = "reset"
	NoticeLoadFallback NoticeKind = "load_fallback"
)

// Notice is a toast-style message for the user.
type Notice struct {
	Level   Level
	Kind    NoticeKind
	Message string
}

// Notifier delivers notices to the user. Notify may be called from the
// debouncer's timer goroutine.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// Recorder is a Notifier that keeps every notice. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Count returns how many notices of kind were recorded.
func (r *Recorder) Count(kind NoticeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notices {
		if x.Kind == kind {
			n++
		}
	}
	return n
}
