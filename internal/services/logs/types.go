package logssvc

import (
	"context"

	"github.com/engels74/soyuznikrr/internal/logbuf"
)

// TailOptions configure one stream session.
type TailOptions struct {
	// MinLevel is a wire level name (DEBUG..CRITICAL). Empty or unknown
	// means no level threshold.
	MinLevel string
	// SourcePrefix keeps only entries whose logger name starts with it.
	// Empty means no source filter.
	SourcePrefix string
	// Filter is an optional CEL expression over the entry. Invalid
	// expressions fail the session before any frame is sent.
	Filter string
	// AfterSeq starts the backfill past an already-delivered cursor.
	AfterSeq uint64
}

// SnapshotOptions configure a one-shot read of the buffer.
type SnapshotOptions struct {
	TailOptions
	// Limit caps the number of returned entries; 0 means no cap.
	Limit int
}

// Sink receives the frames of one session. Implementations own their
// transport; the service never touches the connection directly.
type Sink interface {
	// Send emits one log entry frame.
	Send(e logbuf.Entry) error
	// Heartbeat emits a no-op frame that keeps the connection alive.
	Heartbeat() error
	// Flush pushes buffered frames to the client.
	Flush() error
	// Context reports consumer liveness; its cancellation ends the session.
	Context() context.Context
}
