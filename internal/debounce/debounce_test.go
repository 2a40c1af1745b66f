package debounce

import (
	"sync"
	"testing"
	"time"
)

func fire(t *testing.T, d *Debouncer, value string) FiredMsg {
	t.Helper()
	cmd := d.Schedule(value)
	if cmd == nil {
		t.Fatalf("Schedule returned nil cmd")
	}
	// Reconstruct the message the tick would deliver without waiting.
	return FiredMsg{ID: d.id, Gen: d.gen, Value: value}
}

func TestOnlyLatestScheduleIsAccepted(t *testing.T) {
	d := New(10 * time.Millisecond)

	first := fire(t, d, "l")
	second := fire(t, d, "le")
	third := fire(t, d, "lemon")

	if d.Accept(first) || d.Accept(second) {
		t.Fatalf("superseded schedules must be rejected")
	}
	if !d.Accept(third) {
		t.Fatalf("latest schedule should be accepted")
	}
	if d.Accept(third) {
		t.Fatalf("a schedule is delivered at most once")
	}
}

func TestCancelRejectsPendingTick(t *testing.T) {
	d := New(10 * time.Millisecond)
	msg := fire(t, d, "lemon")
	if !d.Pending() {
		t.Fatalf("expected pending schedule")
	}

	d.Cancel()
	if d.Pending() {
		t.Fatalf("Cancel should clear pending")
	}
	if d.Accept(msg) {
		t.Fatalf("cancelled tick must be rejected")
	}
}

func TestDebouncersAreIndependent(t *testing.T) {
	a := New(time.Millisecond)
	b := New(time.Millisecond)

	msgA := fire(t, a, "x")
	fire(t, b, "x")
	if b.Accept(msgA) {
		t.Fatalf("one debouncer accepted another's tick")
	}
	if !a.Accept(msgA) {
		t.Fatalf("owner should accept its tick")
	}
}

func TestTickDeliversValue(t *testing.T) {
	d := New(time.Millisecond)
	cmd := d.Schedule("pasta")

	msg, ok := cmd().(FiredMsg)
	if !ok {
		t.Fatalf("tick produced %T, want FiredMsg", msg)
	}
	if msg.Value != "pasta" || !d.Accept(msg) {
		t.Fatalf("unexpected tick %+v", msg)
	}
}

func TestDefaultDelay(t *testing.T) {
	if got := New(0).Delay(); got != DefaultDelay {
		t.Fatalf("Delay() = %v, want %v", got, DefaultDelay)
	}
	if DefaultDelay != 250*time.Millisecond {
		t.Fatalf("DefaultDelay = %v", DefaultDelay)
	}
}

func TestFlushDeliversPendingValueOnce(t *testing.T) {
	d := New(time.Hour)
	if _, ok := d.Flush(); ok {
		t.Fatalf("Flush with nothing scheduled should report false")
	}

	tick := fire(t, d, "lemon")
	msg, ok := d.Flush()
	if !ok || msg.Value != "lemon" {
		t.Fatalf("Flush() = %+v, %v; want lemon, true", msg, ok)
	}
	if d.Pending() {
		t.Fatalf("Flush should clear pending")
	}
	if d.Accept(tick) {
		t.Fatalf("tick of a flushed schedule must be rejected")
	}
}

func TestNewFromManyGoroutinesGivesUniqueIDs(t *testing.T) {
	const n = 64
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = New(time.Millisecond).id
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate debouncer id %d", id)
		}
		seen[id] = true
	}
}
