package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/engels74/soyuznikrr/internal/runtime"
	logssvc "github.com/engels74/soyuznikrr/internal/services/logs"
)

// maxFilterLen bounds CEL filter expressions from the query string.
const maxFilterLen = 2048

// LogsController handles the log streaming and snapshot endpoints.
type LogsController struct {
	rt     *runtime.Runtime
	svc    *logssvc.Service
	logger *slog.Logger
}

// NewLogsController creates a new logs controller.
func NewLogsController(rt *runtime.Runtime, svc *logssvc.Service, logger *slog.Logger) *LogsController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogsController{rt: rt, svc: svc, logger: logger}
}

// RegisterRoutes registers the log endpoints with the given router:
// GET /api/v1/logs/stream serves the live tail over SSE, and
// GET /api/v1/logs serves a one-shot snapshot.
func (c *LogsController) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/logs/stream", c.handleStreamSSE)
	r.Get("/api/v1/logs", c.handleSnapshot)
}

// tailOptionsFromQuery extracts the shared filter parameters.
// Query params: level (case-insensitive DEBUG..CRITICAL, unrecognized or
// absent means no filtering), source (logger-name prefix), filter (CEL
// expression), after_seq (resume cursor).
func tailOptionsFromQuery(r *http.Request) logssvc.TailOptions {
	q := r.URL.Query()
	return logssvc.TailOptions{
		MinLevel:     strings.ToUpper(q.Get("level")),
		SourcePrefix: q.Get("source"),
		Filter:       q.Get("filter"),
		AfterSeq:     parseSeq(q.Get("after_seq")),
	}
}

// handleStreamSSE serves a persistent filtered live tail of the log bus.
func (c *LogsController) handleStreamSSE(w http.ResponseWriter, r *http.Request) {
	opts := tailOptionsFromQuery(r)
	if len(opts.Filter) > maxFilterLen {
		writeError(w, http.StatusBadRequest, "Filter too long")
		return
	}
	// Reject bad filters before committing to a stream response.
	if err := logssvc.CheckFilter(opts.Filter); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter expression")
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := sseSink{w: w, r: r}
	if err := sink.writeRetry(c.rt.Config().Logs.SSERetryMs); err != nil {
		return
	}
	_ = sink.Flush()

	if err := c.svc.Tail(opts, sink); err != nil {
		// Transport failure mid-stream; the response is already committed.
		c.logger.Debug("log stream ended with transport error", "error", err)
	}
}

// handleSnapshot returns the retained entries matching the filters in one
// JSON response, plus a max_seq resume cursor usable as after_seq on the
// next request. When limit truncates the page the cursor stops at the
// last returned entry rather than the buffer max.
func (c *LogsController) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	opts := logssvc.SnapshotOptions{
		TailOptions: tailOptionsFromQuery(r),
		Limit:       parseLimit(r.URL.Query().Get("limit")),
	}
	if len(opts.Filter) > maxFilterLen {
		writeError(w, http.StatusBadRequest, "Filter too long")
		return
	}
	entries, max, err := c.svc.Snapshot(opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter expression")
		return
	}
	writeJSON(w, map[string]any{"entries": entries, "max_seq": max})
}
