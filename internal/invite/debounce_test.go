package invite_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/invite"
)

// manualClock fires timers only when Advance moves past their deadline.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) invite.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// AdvanceTo moves the clock to at and runs every due timer in deadline
// order.
func (c *manualClock) AdvanceTo(at time.Duration) {
	c.mu.Lock()
	c.now = at
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= at {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func (c *manualClock) stoppedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.stopped {
			n++
		}
	}
	return n
}

func drain(ch <-chan string) []string {
	var out []string
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestDebouncer_FiresOnceWithFinalValue(t *testing.T) {
	clock := &manualClock{}
	d := invite.NewDebouncer(500*time.Millisecond, invite.WithClock(clock))
	t.Cleanup(d.Stop)

	keystrokes := []struct {
		at    time.Duration
		value string
	}{
		{0, "a"},
		{100 * time.Millisecond, "an"},
		{200 * time.Millisecond, "ann"},
		{550 * time.Millisecond, "anna"},
	}
	for _, k := range keystrokes {
		clock.AdvanceTo(k.at)
		d.Trigger(k.value)
	}

	// The 200ms keystroke would have settled at 700ms had it not been
	// replaced at 550ms.
	clock.AdvanceTo(700 * time.Millisecond)
	assert.Empty(t, drain(d.C()))
	assert.True(t, d.Pending())

	clock.AdvanceTo(1049 * time.Millisecond)
	assert.Empty(t, drain(d.C()))

	clock.AdvanceTo(1050 * time.Millisecond)
	assert.Equal(t, []string{"anna"}, drain(d.C()))
	assert.False(t, d.Pending())

	assert.Equal(t, 3, clock.stoppedCount(), "each keystroke cancels the pending timer")

	clock.AdvanceTo(5 * time.Second)
	assert.Empty(t, drain(d.C()))
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	clock := &manualClock{}
	d := invite.NewDebouncer(500*time.Millisecond, invite.WithClock(clock))
	t.Cleanup(d.Stop)

	d.Trigger("ann")
	clock.AdvanceTo(600 * time.Millisecond)
	require.Equal(t, []string{"ann"}, drain(d.C()))

	d.Trigger("bob")
	clock.AdvanceTo(1100 * time.Millisecond)
	assert.Equal(t, []string{"bob"}, drain(d.C()))
}

func TestDebouncer_KeepsNewestWhenReaderLags(t *testing.T) {
	clock := &manualClock{}
	d := invite.NewDebouncer(100*time.Millisecond, invite.WithClock(clock))
	t.Cleanup(d.Stop)

	d.Trigger("first")
	clock.AdvanceTo(200 * time.Millisecond)
	d.Trigger("second")
	clock.AdvanceTo(400 * time.Millisecond)

	assert.Equal(t, []string{"second"}, drain(d.C()))
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	clock := &manualClock{}
	d := invite.NewDebouncer(500*time.Millisecond, invite.WithClock(clock))
	t.Cleanup(d.Stop)

	d.Trigger("ann")
	d.Cancel()
	clock.AdvanceTo(time.Second)
	assert.Empty(t, drain(d.C()))

	d.Trigger("bob")
	clock.AdvanceTo(2 * time.Second)
	assert.Equal(t, []string{"bob"}, drain(d.C()))
}

func TestDebouncer_StopClosesChannel(t *testing.T) {
	clock := &manualClock{}
	d := invite.NewDebouncer(500*time.Millisecond, invite.WithClock(clock))

	d.Trigger("ann")
	d.Stop()
	d.Stop()
	d.Trigger("ignored")
	clock.AdvanceTo(time.Second)

	_, ok := <-d.C()
	assert.False(t, ok)
	assert.Nil(t, d.Wait()())
}

func TestDebouncer_WaitReturnsSettledMsg(t *testing.T) {
	d := invite.NewDebouncer(10 * time.Millisecond)
	t.Cleanup(d.Stop)

	d.Trigger("ann")
	msg := d.Wait()()
	assert.Equal(t, invite.SettledMsg{Value: "ann"}, msg)
}
