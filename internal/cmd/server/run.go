package serverrun

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/engels74/soyuznikrr/internal/config"
	"github.com/engels74/soyuznikrr/internal/logging"
	"github.com/engels74/soyuznikrr/internal/runtime"
	httpserver "github.com/engels74/soyuznikrr/internal/server/http"
	logssvc "github.com/engels74/soyuznikrr/internal/services/logs"
)

// Options override configuration from CLI flags. Zero values defer to the
// loaded config.
type Options struct {
	ConfigPath     string
	HTTPAddr       string
	LogLevel       string
	LogFormat      string
	BufferCapacity int
}

// apply overlays non-zero options onto cfg.
func (o Options) apply(cfg cfgpkg.Config) cfgpkg.Config {
	if o.HTTPAddr != "" {
		cfg.Server.HTTPAddr = o.HTTPAddr
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.BufferCapacity > 0 {
		cfg.Logs.BufferCapacity = o.BufferCapacity
	}
	return cfg
}

// Run starts the server and blocks until ctx is cancelled or a signal
// arrives.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context; a local
	// signal context is layered over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cfgpkg.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfg = opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer rt.Close()

	// Process logger: every record is captured into the bus before it
	// reaches the terminal backend.
	logger := logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, rt.Buffer(), rt.Notifier())
	slog.SetDefault(logger)
	logging.RedirectStdLog(logger)

	// Attach the notifier dispatcher before the listener accepts its first
	// stream connection.
	rt.Bind(sctx)

	srvLogger := logging.Named(logger, "soyuznikrr.server.http")
	logsSvc := logssvc.New(rt, logging.Named(logger, "soyuznikrr.logs"))
	hsrv := httpserver.New(rt, logsSvc, srvLogger)

	logging.Named(logger, "soyuznikrr.server").Info("starting soyuznikrr server",
		"http", cfg.Server.HTTPAddr,
		"log_level", cfg.Logging.Level,
		"log_format", cfg.Logging.Format,
		"buffer_capacity", cfg.Logs.BufferCapacity,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- hsrv.ListenAndServe(sctx, cfg.Server.HTTPAddr) }()

	select {
	case <-sctx.Done():
		hsrv.Close()
		return nil
	case err := <-errCh:
		return err
	}
}
