package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/engels74/soyuznikrr/internal/logbuf"
)

// LoggerKey is the attribute carrying the dotted source identifier of a
// named logger. It is reserved at the capture boundary and excluded from
// an entry's extra fields.
const LoggerKey = "logger"

// Config controls the terminal log output.
type Config struct {
	// Level is the minimum level written to the terminal output:
	// debug, info, warn, error. Default: info.
	Level string
	// Format is json or console. Default: json.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// NewZerolog builds the terminal zerolog logger for the given config.
func NewZerolog(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(parseZerologLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseZerologLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup builds the process logger: zerolog terminal backend, slog
// front-end, with the capture handler stacked in front so every record
// reaches the bus regardless of terminal level or destination.
func Setup(cfg Config, buf *logbuf.Buffer, notifier *logbuf.Notifier) *slog.Logger {
	zl := NewZerolog(cfg)
	var handler slog.Handler = NewZerologHandler(zl)
	if buf != nil {
		handler = NewCaptureHandler(handler, buf, notifier)
	}
	return slog.New(handler)
}

// Named returns a sub-logger carrying the dotted source identifier that
// stream consumers filter on.
func Named(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String(LoggerKey, name))
}

// RedirectStdLog routes the standard library logger through the given
// slog logger at info level, so stray log.Printf calls reach the bus too.
func RedirectStdLog(logger *slog.Logger) {
	log.SetFlags(0)
	log.SetOutput(stdLogWriter{logger: logger})
}

type stdLogWriter struct {
	logger *slog.Logger
}

func (w stdLogWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
