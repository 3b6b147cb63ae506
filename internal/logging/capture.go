package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/engels74/soyuznikrr/internal/logbuf"
	"github.com/engels74/soyuznikrr/internal/metrics"
)

// reservedKeys are already represented by an entry's named fields and are
// excluded from the extra-field map at the capture boundary.
var reservedKeys = map[string]bool{
	LoggerKey:   true,
	"time":      true,
	"timestamp": true,
	"level":     true,
	"msg":       true,
}

// CaptureHandler is the producer-side integration point between the
// logging pipeline and the bus. It runs synchronously on the emitting
// goroutine for every record: extract the named fields, append to the
// buffer, signal the notifier, then hand the record to the wrapped
// handler unchanged. It must never fail a log call; a capture error only
// drops the entry from the buffer.
type CaptureHandler struct {
	next     slog.Handler
	buf      *logbuf.Buffer
	notifier *logbuf.Notifier
	attrs    []slog.Attr
	groups   []string
}

// NewCaptureHandler wraps next with bus capture. notifier may be nil when
// no streaming consumers exist (captured entries are still buffered).
func NewCaptureHandler(next slog.Handler, buf *logbuf.Buffer, notifier *logbuf.Notifier) *CaptureHandler {
	return &CaptureHandler{next: next, buf: buf, notifier: notifier}
}

// Enabled always reports true: the bus captures every record, even ones
// the terminal backend would drop. The backend's own Enabled is consulted
// before delegation in Handle.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle captures the record into the bus and passes it through.
func (h *CaptureHandler) Handle(ctx context.Context, record slog.Record) error {
	h.capture(record)
	if h.next == nil || !h.next.Enabled(ctx, record.Level) {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *CaptureHandler) capture(record slog.Record) {
	// A panicking LogValuer or Stringer must not break application logging;
	// the entry is simply dropped from capture.
	defer func() { _ = recover() }()

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := logbuf.Entry{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     wireLevel(record.Level),
		Message:   record.Message,
		Fields:    map[string]string{},
	}
	for _, attr := range h.attrs {
		collectAttr(&entry, attr, h.groups)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collectAttr(&entry, attr, h.groups)
		return true
	})

	h.buf.Append(entry)
	metrics.LogEntriesCaptured.Inc()
	if h.notifier != nil {
		h.notifier.Signal()
	}
}

func collectAttr(entry *logbuf.Entry, attr slog.Attr, groups []string) {
	if attr.Value.Kind() == slog.KindGroup {
		for _, ga := range attr.Value.Group() {
			collectAttr(entry, ga, append(groups, attr.Key))
		}
		return
	}
	if len(groups) == 0 {
		if attr.Key == LoggerKey {
			entry.LoggerName = attr.Value.String()
			return
		}
		if reservedKeys[attr.Key] {
			return
		}
	}
	entry.Fields[qualifyKey(attr.Key, groups)] = attr.Value.String()
}

// wireLevel maps slog levels onto the five-name scheme the streaming
// interface fixes: anything above Error is CRITICAL.
func wireLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return logbuf.LevelDebug
	case level < slog.LevelWarn:
		return logbuf.LevelInfo
	case level < slog.LevelError:
		return logbuf.LevelWarning
	case level < slog.LevelError+4:
		return logbuf.LevelError
	default:
		return logbuf.LevelCritical
	}
}

// WithAttrs retains the attributes for capture and forwards them to the
// wrapped handler.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	next := h.next
	if next != nil {
		next = next.WithAttrs(attrs)
	}
	return &CaptureHandler{next: next, buf: h.buf, notifier: h.notifier, attrs: merged, groups: h.groups}
}

// WithGroup qualifies subsequent keys for capture and forwards the group
// to the wrapped handler.
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	next := h.next
	if next != nil {
		next = next.WithGroup(name)
	}
	return &CaptureHandler{next: next, buf: h.buf, notifier: h.notifier, attrs: h.attrs, groups: groups}
}
