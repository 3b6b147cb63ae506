package logbuf

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Notifier carries append wakeups from producer goroutines to waiting
// stream sessions. Producers call Signal, which is non-blocking and
// coalescing; a single dispatcher started by Run receives the signals
// and releases every waiter by closing and re-arming a broadcast channel.
// Waiters must re-check the buffer after waking rather than trust the
// wakeup itself.
type Notifier struct {
	mu        sync.Mutex
	broadcast chan struct{}
	signal    chan struct{}
	bound     atomic.Bool
}

// NewNotifier creates an unbound notifier. Wakeups are only delivered once
// Run is started; until then Wait degrades to a timed poll.
func NewNotifier() *Notifier {
	return &Notifier{
		broadcast: make(chan struct{}),
		signal:    make(chan struct{}, 1),
	}
}

// Signal schedules a wakeup for all current waiters. Callable from any
// goroutine; never blocks. Signals arriving while one is pending coalesce
// into a single wakeup. A no-op while the dispatcher is not running.
func (n *Notifier) Signal() {
	if !n.bound.Load() {
		return
	}
	select {
	case n.signal <- struct{}{}:
	default:
	}
}

// Run binds the notifier and dispatches wakeups until ctx is cancelled.
// Start it exactly once, before the first consumer connects.
func (n *Notifier) Run(ctx context.Context) {
	n.bound.Store(true)
	defer n.bound.Store(false)
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.signal:
			n.wake()
		}
	}
}

// Bound reports whether the dispatcher is running.
func (n *Notifier) Bound() bool { return n.bound.Load() }

func (n *Notifier) wake() {
	n.mu.Lock()
	close(n.broadcast)
	n.broadcast = make(chan struct{})
	n.mu.Unlock()
}

// Wait blocks until a wakeup, the heartbeat deadline, the hard deadline,
// or ctx cancellation, whichever comes first. Returns true only when
// woken by a Signal. The hard deadline must be strictly greater than the
// heartbeat interval; it bounds the wait even if a wakeup is missed.
// While the notifier is unbound, Wait is a plain bounded sleep so sessions
// stay live regardless of startup ordering.
func (n *Notifier) Wait(ctx context.Context, heartbeat, hard time.Duration) bool {
	if !n.bound.Load() {
		select {
		case <-ctx.Done():
		case <-time.After(heartbeat):
		}
		return false
	}
	n.mu.Lock()
	ch := n.broadcast
	n.mu.Unlock()

	hb := time.NewTimer(heartbeat)
	defer hb.Stop()
	guard := time.NewTimer(hard)
	defer guard.Stop()
	select {
	case <-ch:
		return true
	case <-hb.C:
		return false
	case <-guard.C:
		return false
	case <-ctx.Done():
		return false
	}
}
