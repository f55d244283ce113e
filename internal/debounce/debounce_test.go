package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// --- Debouncer ---

func TestZeroWindowIsSynchronous(t *testing.T) {
	var calls atomic.Int32
	d := New(0, func() { calls.Add(1) })

	d.Trigger()
	d.Trigger()
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2 synchronous invocations", got)
	}
}

func TestBurstCoalescesToOneCall(t *testing.T) {
	var calls atomic.Int32
	d := New(30*time.Millisecond, func() { calls.Add(1) })
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// Let any stray extra invocation land before asserting.
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 for a coalesced burst", got)
	}
}

func TestFlushRunsPendingNow(t *testing.T) {
	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })

	d.Trigger()
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 after Flush", got)
	}

	// Nothing pending: Flush is a no-op.
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want still 1", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0 after Stop", got)
	}
}
