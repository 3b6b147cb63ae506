package logbuf

import "sync"

// DefaultCapacity is used when a Buffer is constructed with a non-positive
// capacity.
const DefaultCapacity = 5000

// Buffer is a bounded, thread-safe ring of recent log entries. Sequencing
// and insertion happen under one lock, so a reader can never observe an
// entry without also learning a max seq that covers it.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	head    int // next write position
	count   int
	lastSeq uint64
	evicted uint64
}

// NewBuffer creates a buffer retaining at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Append assigns e the next sequence number, stores it, and evicts the
// oldest entry if the buffer is full. Returns the assigned seq. Safe to
// call from any goroutine; never blocks beyond the lock.
func (b *Buffer) Append(e Entry) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSeq++
	e.Seq = b.lastSeq
	b.entries[b.head] = e
	b.head = (b.head + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	} else {
		b.evicted++
	}
	return e.Seq
}

// EntriesSince returns all retained entries with seq > afterSeq in
// increasing seq order, plus the current max seq. The max seq is returned
// even when no entries matched so callers can advance their cursor past
// gaps. An afterSeq older than the oldest retained entry yields the full
// retained window with no eviction indication.
func (b *Buffer) EntriesSince(afterSeq uint64) ([]Entry, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Entry
	start := (b.head - b.count + len(b.entries)) % len(b.entries)
	for i := 0; i < b.count; i++ {
		e := b.entries[(start+i)%len(b.entries)]
		if e.Seq > afterSeq {
			out = append(out, e)
		}
	}
	return out, b.lastSeq
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int { return len(b.entries) }

// LastSeq returns the most recently assigned sequence number.
func (b *Buffer) LastSeq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeq
}

// Evicted returns the total number of entries dropped to honor capacity.
func (b *Buffer) Evicted() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}
