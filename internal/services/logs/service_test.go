package logssvc

import (
	"context"
	"sync"
	"testing"
	"time"

	cfgpkg "github.com/engels74/soyuznikrr/internal/config"
	"github.com/engels74/soyuznikrr/internal/logbuf"
	"github.com/engels74/soyuznikrr/internal/runtime"
)

const (
	testHeartbeat = 60 * time.Millisecond
	testHard      = 120 * time.Millisecond
)

func newTestService(t *testing.T) (*Service, *runtime.Runtime, context.CancelFunc) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Logs.BufferCapacity = 64
	cfg.Logs.HeartbeatInterval = testHeartbeat
	cfg.Logs.WaitTimeout = testHard
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rt.Bind(ctx)
	deadline := time.Now().Add(time.Second)
	for !rt.Notifier().Bound() {
		if time.Now().After(deadline) {
			t.Fatalf("notifier never bound")
		}
		time.Sleep(time.Millisecond)
	}
	return New(rt, nil), rt, cancel
}

// append pushes an entry the way the capture handler would: store, then
// signal.
func appendEntry(rt *runtime.Runtime, level, logger, msg string) uint64 {
	seq := rt.Buffer().Append(logbuf.Entry{Level: level, LoggerName: logger, Message: msg})
	rt.Notifier().Signal()
	return seq
}

type testSink struct {
	mu         sync.Mutex
	ctx        context.Context
	entries    []logbuf.Entry
	heartbeats int
}

func newTestSink(ctx context.Context) *testSink { return &testSink{ctx: ctx} }

func (s *testSink) Send(e logbuf.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *testSink) Heartbeat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats++
	return nil
}

func (s *testSink) Flush() error            { return nil }
func (s *testSink) Context() context.Context { return s.ctx }

func (s *testSink) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *testSink) heartbeatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heartbeats
}

func (s *testSink) snapshot() []logbuf.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]logbuf.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestTailBackfillThenLive(t *testing.T) {
	svc, rt, _ := newTestService(t)
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "one")
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "two")

	ctx, cancel := context.WithCancel(context.Background())
	sink := newTestSink(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Tail(TailOptions{}, sink) }()

	waitFor(t, "backfill", func() bool { return sink.entryCount() == 2 })

	// An append while the session waits is observed well before the hard
	// timeout.
	time.Sleep(10 * time.Millisecond)
	start := time.Now()
	appendEntry(rt, logbuf.LevelError, "soyuznikrr.core", "three")
	waitFor(t, "live entry", func() bool { return sink.entryCount() == 3 })
	if elapsed := time.Since(start); elapsed > testHard {
		t.Fatalf("live delivery too slow: %v", elapsed)
	}

	got := sink.snapshot()
	var prev uint64
	for i, e := range got {
		if e.Seq <= prev {
			t.Fatalf("frame %d out of order: seq %d after %d", i, e.Seq, prev)
		}
		prev = e.Seq
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("tail after disconnect: %v", err)
	}
}

func TestTailHeartbeatWhenIdle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newTestSink(ctx)
	go func() { _ = svc.Tail(TailOptions{}, sink) }()

	waitFor(t, "heartbeat", func() bool { return sink.heartbeatCount() >= 1 })
	if sink.entryCount() != 0 {
		t.Fatalf("idle session delivered data frames: %d", sink.entryCount())
	}
}

func TestTailLevelThreshold(t *testing.T) {
	svc, rt, _ := newTestService(t)
	appendEntry(rt, logbuf.LevelDebug, "soyuznikrr.api", "d")
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "i")
	appendEntry(rt, logbuf.LevelError, "soyuznikrr.api", "e")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newTestSink(ctx)
	go func() { _ = svc.Tail(TailOptions{MinLevel: "info"}, sink) }()

	waitFor(t, "filtered backfill", func() bool { return sink.entryCount() == 2 })
	got := sink.snapshot()
	if got[0].Message != "i" || got[1].Message != "e" {
		t.Fatalf("unexpected delivery order: %+v", got)
	}
}

func TestTailSourcePrefix(t *testing.T) {
	svc, rt, _ := newTestService(t)
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api.foo", "keep")
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.core.bar", "drop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newTestSink(ctx)
	go func() { _ = svc.Tail(TailOptions{SourcePrefix: "soyuznikrr.api"}, sink) }()

	waitFor(t, "prefix filter", func() bool { return sink.entryCount() == 1 })
	if got := sink.snapshot(); got[0].Message != "keep" {
		t.Fatalf("wrong entry passed: %+v", got[0])
	}
}

func TestTailFilteredEntriesAdvanceCursor(t *testing.T) {
	svc, rt, _ := newTestService(t)
	appendEntry(rt, logbuf.LevelDebug, "soyuznikrr.api", "below threshold")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newTestSink(ctx)
	go func() { _ = svc.Tail(TailOptions{MinLevel: "ERROR"}, sink) }()

	// Give the session time to finish backfill and park.
	time.Sleep(20 * time.Millisecond)
	appendEntry(rt, logbuf.LevelError, "soyuznikrr.api", "passes")
	waitFor(t, "live entry", func() bool { return sink.entryCount() == 1 })
	if got := sink.snapshot(); got[0].Message != "passes" {
		t.Fatalf("redelivered or wrong entry: %+v", got)
	}
}

func TestTailResumeDoesNotRedeliver(t *testing.T) {
	svc, rt, _ := newTestService(t)
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "first")
	cursor := appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "second")
	appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "third")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newTestSink(ctx)
	go func() { _ = svc.Tail(TailOptions{AfterSeq: cursor}, sink) }()

	waitFor(t, "resumed backfill", func() bool { return sink.entryCount() == 1 })
	if got := sink.snapshot(); got[0].Message != "third" {
		t.Fatalf("resume delivered wrong entries: %+v", got)
	}
}

func TestTailInvalidFilterFailsBeforeStreaming(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newTestSink(ctx)
	if err := svc.Tail(TailOptions{Filter: "not (valid"}, sink); err == nil {
		t.Fatalf("expected filter compile error")
	}
	if sink.entryCount() != 0 || sink.heartbeatCount() != 0 {
		t.Fatalf("frames sent despite invalid filter")
	}
}

func TestSnapshot(t *testing.T) {
	svc, rt, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "m")
	}
	entries, max, err := svc.Snapshot(SnapshotOptions{Limit: 3})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("limit ignored: got %d entries", len(entries))
	}
	if max != 3 {
		t.Fatalf("truncated cursor: want 3, got %d", max)
	}
	entries, max, err = svc.Snapshot(SnapshotOptions{TailOptions: TailOptions{AfterSeq: 4}})
	if err != nil {
		t.Fatalf("snapshot after: %v", err)
	}
	if len(entries) != 1 || entries[0].Seq != 5 {
		t.Fatalf("after_seq snapshot: %+v", entries)
	}
	if max != 5 {
		t.Fatalf("full-page cursor: want buffer max 5, got %d", max)
	}
}

func TestSnapshotPagingLosesNothing(t *testing.T) {
	svc, rt, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		appendEntry(rt, logbuf.LevelInfo, "soyuznikrr.api", "m")
	}

	// Page through the buffer using each page's cursor as the next
	// after_seq. Every entry must be seen exactly once.
	var seen []uint64
	cursor := uint64(0)
	for {
		entries, next, err := svc.Snapshot(SnapshotOptions{
			TailOptions: TailOptions{AfterSeq: cursor},
			Limit:       2,
		})
		if err != nil {
			t.Fatalf("snapshot page: %v", err)
		}
		for _, e := range entries {
			seen = append(seen, e.Seq)
		}
		if len(entries) == 0 {
			break
		}
		if next <= cursor {
			t.Fatalf("cursor did not advance: %d -> %d", cursor, next)
		}
		cursor = next
	}
	if len(seen) != 5 {
		t.Fatalf("paging lost entries: saw %d of 5 (%v)", len(seen), seen)
	}
	for i, seq := range seen {
		if seq != uint64(i+1) {
			t.Fatalf("page order: got %v", seen)
		}
	}
}
