package controllers

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/engels74/soyuznikrr/internal/logbuf"
)

// sseSink implements the logs service Sink over Server-Sent Events.
//
// Data frames carry the JSON-encoded entry under event name "log";
// heartbeats are comment frames with no payload.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send writes one entry as an SSE "log" event.
func (s sseSink) Send(e logbuf.Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: log\ndata: %s\n\n", b); err != nil {
		return err
	}
	return nil
}

// Heartbeat writes a comment frame to keep intermediaries from closing
// the connection as idle.
func (s sseSink) Heartbeat() error {
	_, err := s.w.Write([]byte(": heartbeat\n\n"))
	return err
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
//
// This ensures frames are immediately sent to the client.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// writeRetry advertises the client reconnect interval once, at stream
// start.
func (s sseSink) writeRetry(ms int) error {
	_, err := fmt.Fprintf(s.w, "retry: %d\n\n", ms)
	return err
}
