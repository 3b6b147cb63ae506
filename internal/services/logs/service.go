package logssvc

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/engels74/soyuznikrr/internal/logbuf"
	"github.com/engels74/soyuznikrr/internal/metrics"
	"github.com/engels74/soyuznikrr/internal/runtime"
)

// Service serves log stream sessions and snapshots over the runtime's
// bus. One Service is shared by every connection.
type Service struct {
	rt     *runtime.Runtime
	logger *slog.Logger
}

// New creates the logs service. logger may be nil.
func New(rt *runtime.Runtime, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{rt: rt, logger: logger}
}

// Tail runs one stream session against sink until the sink's context is
// cancelled. It returns nil on normal disconnect; a non-nil error means
// the session could not start (bad filter) or the transport failed
// mid-stream.
func (s *Service) Tail(opts TailOptions, sink Sink) error {
	flt, err := newEntryFilter(opts)
	if err != nil {
		return err
	}
	buf := s.rt.Buffer()
	notifier := s.rt.Notifier()
	heartbeat := s.rt.Config().Logs.HeartbeatInterval
	hard := s.rt.Config().Logs.WaitTimeout
	ctx := sink.Context()

	sessionID := uuid.NewString()
	metrics.LogSessionsActive.Inc()
	defer metrics.LogSessionsActive.Dec()
	s.logger.Debug("log stream session opened",
		"session_id", sessionID,
		"min_level", opts.MinLevel,
		"source_prefix", opts.SourcePrefix,
		"after_seq", opts.AfterSeq,
	)
	defer s.logger.Debug("log stream session closed", "session_id", sessionID)

	// Backfill: everything retained past the cursor, filtered. The cursor
	// advances to the buffer max even when the filter rejects everything.
	cursor := opts.AfterSeq
	entries, max := buf.EntriesSince(cursor)
	if err := s.deliver(entries, flt, sink); err != nil {
		return err
	}
	cursor = max

	// Live tail: wait, re-check, deliver or heartbeat, repeat.
	for {
		if ctx.Err() != nil {
			return nil
		}
		notifier.Wait(ctx, heartbeat, hard)
		if ctx.Err() != nil {
			return nil
		}
		entries, max := buf.EntriesSince(cursor)
		if len(entries) == 0 {
			// Timed out with no new data (or a coalesced wakeup already
			// consumed): keep the connection alive.
			if err := sink.Heartbeat(); err != nil {
				return err
			}
			if err := sink.Flush(); err != nil {
				return err
			}
			metrics.LogHeartbeatsSent.Inc()
			continue
		}
		cursor = max
		if err := s.deliver(entries, flt, sink); err != nil {
			return err
		}
	}
}

func (s *Service) deliver(entries []logbuf.Entry, flt entryFilter, sink Sink) error {
	sent := 0
	for _, e := range entries {
		if !flt.pass(e) {
			continue
		}
		if err := sink.Send(e); err != nil {
			return err
		}
		sent++
	}
	if sent > 0 {
		metrics.LogEntriesDelivered.Add(float64(sent))
	}
	return sink.Flush()
}

// Snapshot returns the retained entries matching opts in one shot, plus
// a resume cursor: the current max seq, or the seq of the last returned
// entry when Limit truncated the page. The cursor never advances past an
// entry the caller has not seen, so paging with after_seq loses nothing.
func (s *Service) Snapshot(opts SnapshotOptions) ([]logbuf.Entry, uint64, error) {
	flt, err := newEntryFilter(opts.TailOptions)
	if err != nil {
		return nil, 0, err
	}
	entries, max := s.rt.Buffer().EntriesSince(opts.AfterSeq)
	out := make([]logbuf.Entry, 0, len(entries))
	for _, e := range entries {
		if !flt.pass(e) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			return out, e.Seq, nil
		}
	}
	return out, max, nil
}
