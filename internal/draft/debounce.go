package draft

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs fn once after calls to Trigger stop for delay.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewDebouncer returns a debouncer running fn.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger restarts the delay.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush runs a pending fn now.
func (d *Debouncer) Flush() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
	}

	run := d.pending && !d.stopped
	d.pending = false
	d.mu.Unlock()

	if run {
		d.fn()
	}
}

// Stop drops a pending run and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false

	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	run := d.pending && !d.stopped
	d.pending = false
	d.mu.Unlock()

	if run {
		d.fn()
	}
}

// Autosaver saves the snapshot of a session a short delay after each
// change, when the snapshot has content.
type Autosaver struct {
	store    Store
	snapshot func() *Draft
	onError  func(error)
	debounce *Debouncer
}

// NewAutosaver returns an autosaver writing snapshots to store. Save
// failures go to onError, which may be nil.
func NewAutosaver(store Store, delay time.Duration, snapshot func() *Draft, onError func(error)) *Autosaver {
	a := &Autosaver{store: store, snapshot: snapshot, onError: onError}
	a.debounce = NewDebouncer(delay, a.save)

	return a
}

// Changed schedules a save.
func (a *Autosaver) Changed() {
	a.debounce.Trigger()
}

// Flush saves a scheduled snapshot now.
func (a *Autosaver) Flush() {
	a.debounce.Flush()
}

// Close drops any scheduled save.
func (a *Autosaver) Close() {
	a.debounce.Stop()
}

func (a *Autosaver) save() {
	d := a.snapshot()
	if !d.HasContent() {
		return
	}

	d.SavedAt = time.Now().UTC()

	if err := a.store.Save(context.Background(), d); err != nil && a.onError != nil {
		a.onError(err)
	}
}
