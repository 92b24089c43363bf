// Package invite implements invitation handling and the debounced
// search-and-invite flow. Network work is exposed both as plain methods
// and as tea.Cmds that report back through messages.
package invite

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock creates timers. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SettledMsg carries a value that stayed unchanged for the debounce wait.
type SettledMsg struct {
	Value string
}

// Debouncer delivers the last value passed to Trigger once no new value
// has arrived for the wait duration. Each Trigger stops the pending timer.
type Debouncer struct {
	wait  time.Duration
	clock Clock

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	out     chan string
	stopped bool
}

// DebounceOption configures a Debouncer.
type DebounceOption func(*Debouncer)

// WithClock replaces the wall clock.
func WithClock(c Clock) DebounceOption {
	return func(d *Debouncer) { d.clock = c }
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(wait time.Duration, opts ...DebounceOption) *Debouncer {
	d := &Debouncer{
		wait:  wait,
		clock: realClock{},
		out:   make(chan string, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger restarts the quiet period with value as the pending value.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen, value) })
}

// fire publishes value unless a later Trigger, Cancel or Stop superseded
// it. Timers that fired while Stop was racing them are dropped here.
func (d *Debouncer) fire(gen uint64, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || gen != d.gen {
		return
	}
	d.timer = nil

	// Keep only the newest settled value if the reader is behind.
	for {
		select {
		case d.out <- value:
			return
		default:
			select {
			case <-d.out:
			default:
			}
		}
	}
}

// C returns the channel settled values are delivered on.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending value without stopping the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Stop cancels any pending value and closes C.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	close(d.out)
}

// Wait returns a tea.Cmd that blocks until the next settled value. Call
// it again after each SettledMsg to keep listening.
func (d *Debouncer) Wait() tea.Cmd {
	return func() tea.Msg {
		v, ok := <-d.out
		if !ok {
			return nil
		}
		return SettledMsg{Value: v}
	}
}
