package logbuf

import (
	"context"
	"testing"
	"time"
)

func startNotifier(t *testing.T) *Notifier {
	t.Helper()
	n := NewNotifier()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go n.Run(ctx)
	// Run sets the bound flag as its first action; give it a moment.
	deadline := time.Now().Add(time.Second)
	for !n.Bound() {
		if time.Now().After(deadline) {
			t.Fatalf("notifier never bound")
		}
		time.Sleep(time.Millisecond)
	}
	return n
}

func TestWaitWakesOnSignal(t *testing.T) {
	n := startNotifier(t)

	done := make(chan bool, 1)
	go func() {
		done <- n.Wait(context.Background(), 2*time.Second, 3*time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	n.Signal()

	select {
	case woke := <-done:
		if !woke {
			t.Fatalf("expected wake by signal, got timeout")
		}
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Fatalf("wake took too long: %v", elapsed)
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter never woke")
	}
}

func TestWaitTimesOutWithoutSignal(t *testing.T) {
	n := startNotifier(t)
	if n.Wait(context.Background(), 50*time.Millisecond, 100*time.Millisecond) {
		t.Fatalf("expected timeout")
	}
}

func TestWaitUnboundFallsBackToPoll(t *testing.T) {
	n := NewNotifier()
	n.Signal() // no-op while unbound
	start := time.Now()
	if n.Wait(context.Background(), 50*time.Millisecond, 100*time.Millisecond) {
		t.Fatalf("unbound wait must report timeout")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("unbound wait returned too early: %v", elapsed)
	}
}

func TestWaitCancelled(t *testing.T) {
	n := startNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		done <- n.Wait(ctx, 5*time.Second, 6*time.Second)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case woke := <-done:
		if woke {
			t.Fatalf("cancelled wait must not report a wake")
		}
	case <-time.After(time.Second):
		t.Fatalf("cancellation did not unblock the wait")
	}
}

func TestSignalsCoalesce(t *testing.T) {
	n := startNotifier(t)
	woken := make(chan bool, 1)
	go func() {
		woken <- n.Wait(context.Background(), 2*time.Second, 3*time.Second)
	}()
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 10; i++ {
		n.Signal()
	}
	select {
	case ok := <-woken:
		if !ok {
			t.Fatalf("expected wake")
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter never woke")
	}
	// A fresh wait after the burst sees no stale wakeups piling up: at most
	// one coalesced signal may still be in flight, after which waits time out.
	n.Wait(context.Background(), 100*time.Millisecond, 200*time.Millisecond)
	if n.Wait(context.Background(), 100*time.Millisecond, 200*time.Millisecond) {
		t.Fatalf("coalesced signals produced more than one extra wake")
	}
}
