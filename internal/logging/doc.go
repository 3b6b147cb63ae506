// Package logging builds the process logger and the capture path that
// feeds the log bus.
//
// The front-end is log/slog; the terminal backend is zerolog. Between the
// two sits CaptureHandler, a pass-through slog.Handler that copies every
// record into the logbuf ring and signals the notifier before delegating
// to the backend. A failure to capture drops the entry from the buffer but
// never breaks the log call itself.
//
// Loggers are named with dotted source identifiers via Named, which stream
// consumers use for prefix filtering:
//
//	logger := logging.Setup(cfg, buf, notifier)
//	api := logging.Named(logger, "soyuznikrr.api")
//	api.Info("invite accepted", "invite_id", id)
package logging
