package ticker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerReportsElapsedTime(t *testing.T) {
	var ticks atomic.Int32
	var total atomic.Int64

	tk := New(5*time.Millisecond, func(dt time.Duration) {
		if dt <= 0 {
			t.Errorf("non-positive dt %v", dt)
		}
		ticks.Add(1)
		total.Add(int64(dt))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	tk.Run(ctx)

	if n := ticks.Load(); n < 2 {
		t.Fatalf("only %d ticks in 60ms at a 5ms period", n)
	}
	if elapsed := time.Duration(total.Load()); elapsed > 200*time.Millisecond {
		t.Errorf("accumulated dt %v is implausible", elapsed)
	}
}

func TestTickerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		New(time.Millisecond, func(time.Duration) {}).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop on a cancelled context")
	}
}
