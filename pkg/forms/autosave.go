package forms

import (
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period after the last edit before an
// auto-save write fires.
const DefaultAutoSaveDelay = 2 * time.Second

// AutoSaver debounces persistence writes during an edit session. Every
// Schedule call cancels the pending timer and arms a new one, so the write
// happens only after the quiet period. At most one write runs at a time;
// edits arriving mid-write are coalesced into a single trailing write
// (last writer wins, the buffer is the source of truth).
type AutoSaver struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	next    func()
	running bool
	rearmed bool
	closed  bool
}

// NewAutoSaver creates an AutoSaver with the given quiet period.
// A non-positive delay falls back to the default.
func NewAutoSaver(delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{delay: delay}
}

// Eligible reports whether an auto-save should be armed at all: only edit
// sessions on existing records with both title and body present qualify.
func Eligible(editID, title, body string) bool {
	return editID != "" && len(title) > 0 && len(body) > 0
}

// Schedule arms (or re-arms) the debounce timer with the latest save
// closure. The closure should capture a snapshot of the edit buffer.
func (a *AutoSaver) Schedule(save func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.next = save
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *AutoSaver) fire() {
	a.mu.Lock()
	if a.closed || a.next == nil {
		a.mu.Unlock()
		return
	}
	if a.running {
		// A write is already in flight; remember to run again with the
		// newer buffer once it finishes.
		a.rearmed = true
		a.mu.Unlock()
		return
	}
	save := a.next
	a.next = nil
	a.running = true
	a.mu.Unlock()

	save()

	a.mu.Lock()
	a.running = false
	if a.rearmed && !a.closed {
		a.rearmed = false
		if a.next != nil {
			a.timer = time.AfterFunc(a.delay, a.fire)
		}
	}
	a.mu.Unlock()
}

// Cancel drops any pending write without closing the saver.
func (a *AutoSaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.next = nil
	a.rearmed = false
}

// Close cancels the pending write and rejects further scheduling.
// Called on view teardown.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.next = nil
	a.rearmed = false
}
