package testkit

import (
	"testing"
	"time"
)

var (
	nowFn      = func() int64 { return 1 }
	swapTarget = "local"
)

func TestSwap_FunctionAndRestore(t *testing.T) {
	// run swap in a subtest so Cleanup runs before we validate restoration
	t.Run("swap-in-subtest", func(t *testing.T) {
		Swap(t, &nowFn, func() int64 { return 99 })
		if got := nowFn(); got != 99 {
			t.Fatalf("swap did not take effect, got %d want 99", got)
		}
	})

	if got := nowFn(); got != 1 {
		t.Fatalf("swap did not restore original, got %d want 1", got)
	}
}

func TestSwap_NonFunctionType(t *testing.T) {
	t.Run("swap-value", func(t *testing.T) {
		Swap(t, &swapTarget, "utc")
		if swapTarget != "utc" {
			t.Fatalf("swap value = %q", swapTarget)
		}
	})
	if swapTarget != "local" {
		t.Fatalf("value not restored: %q", swapTarget)
	}
}

func TestSerial_ReleasesOnCleanup(t *testing.T) {
	for i := 0; i < 2; i++ {
		t.Run("serial", func(t *testing.T) { Serial(t) })
	}
	done := make(chan struct{})
	go func() {
		seamMu.Lock()
		seamMu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Serial did not release its lock")
	}
}
