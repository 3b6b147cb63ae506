// Package logbuf implements the in-process log event bus: a bounded,
// mutex-guarded ring of recent log entries with a monotonic sequence
// counter, plus the notifier that wakes tailing sessions when producers
// append.
//
// # Overview
//
// Producers (any goroutine that logs) append entries through the capture
// handler in internal/logging; consumers (one per streaming connection)
// read with EntriesSince and block on Notifier.Wait between reads. The
// buffer is intentionally lossy: once full, the oldest entries are evicted
// silently, so a slow or disconnected consumer can lose history but can
// never stall a producer.
//
// API surface (internal)
//
//	buf := NewBuffer(5000)
//	seq := buf.Append(Entry{Level: LevelInfo, Message: "hello"})
//
//	// Read everything retained past a cursor, plus the current max seq
//	entries, max := buf.EntriesSince(seq - 1)
//	_ = entries
//	_ = max // resume position, returned even when no entries matched
//
//	// Blocking wait/notify
//	n := NewNotifier()
//	go n.Run(ctx)    // bind the dispatcher once, at startup
//	n.Signal()       // any goroutine, non-blocking, coalescing
//	woke := n.Wait(ctx, 30*time.Second, 35*time.Second)
//	_ = woke // callers re-check EntriesSince either way
package logbuf
