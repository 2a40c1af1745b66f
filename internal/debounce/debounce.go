// Package debounce delays a value until input has been quiet for a fixed
// interval. Each Schedule supersedes the previous one; only the most recent
// tick is accepted when it fires.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet interval applied to search input.
const DefaultDelay = 250 * time.Millisecond

// FiredMsg is delivered when a scheduled delay elapses.
type FiredMsg struct {
	ID    int
	Gen   int
	Value string
}

var lastID atomic.Int64

// Debouncer hands out generation-tagged ticks. It is not safe for concurrent
// use; it is owned by a single model's Update loop.
type Debouncer struct {
	id      int
	delay   time.Duration
	gen     int
	pending bool
	value   string
}

// New creates a debouncer with the given delay. A non-positive delay falls
// back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{id: int(lastID.Add(1)), delay: delay}
}

// Delay returns the configured quiet interval.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule starts a new delay for value and returns the command that fires it.
// Any earlier schedule is superseded.
func (d *Debouncer) Schedule(value string) tea.Cmd {
	d.gen++
	d.pending = true
	d.value = value
	id, gen := d.id, d.gen
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return FiredMsg{ID: id, Gen: gen, Value: value}
	})
}

// Cancel drops any pending schedule. Its tick may still arrive but will be
// rejected by Accept.
func (d *Debouncer) Cancel() {
	d.gen++
	d.pending = false
}

// Pending reports whether a schedule is outstanding.
func (d *Debouncer) Pending() bool { return d.pending }

// Accept reports whether msg is the current schedule of this debouncer and
// marks it delivered.
func (d *Debouncer) Accept(msg FiredMsg) bool {
	if msg.ID != d.id || msg.Gen != d.gen || !d.pending {
		return false
	}
	d.pending = false
	return true
}

// Flush delivers the pending schedule now instead of waiting for its tick.
// The tick, when it arrives, is rejected.
func (d *Debouncer) Flush() (FiredMsg, bool) {
	if !d.pending {
		return FiredMsg{}, false
	}
	d.pending = false
	return FiredMsg{ID: d.id, Gen: d.gen, Value: d.value}, true
}
