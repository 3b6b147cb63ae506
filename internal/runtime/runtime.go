package runtime

import (
	"context"
	"errors"
	"sync"

	cfgpkg "github.com/engels74/soyuznikrr/internal/config"
	"github.com/engels74/soyuznikrr/internal/logbuf"
	"github.com/engels74/soyuznikrr/internal/metrics"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
}

// Runtime owns the log bus for a single process: the ring buffer shared by
// all producers and the notifier bridging them to streaming consumers.
type Runtime struct {
	config   cfgpkg.Config
	buf      *logbuf.Buffer
	notifier *logbuf.Notifier

	bindOnce sync.Once
	cancel   context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Open validates the configuration and constructs the bus components.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	rt := &Runtime{
		config:   opts.Config,
		buf:      logbuf.NewBuffer(opts.Config.Logs.BufferCapacity),
		notifier: logbuf.NewNotifier(),
	}
	metrics.RegisterEvicted(rt.buf.Evicted)
	return rt, nil
}

// Bind starts the notifier dispatcher. Call exactly once at startup,
// before the HTTP listener accepts its first stream connection; repeat
// calls are no-ops. Until Bind runs, sessions fall back to timed polling.
func (r *Runtime) Bind(ctx context.Context) {
	r.bindOnce.Do(func() {
		dctx, cancel := context.WithCancel(ctx)
		r.cancel = cancel
		go r.notifier.Run(dctx)
	})
}

// Close stops the dispatcher. The buffer itself needs no teardown; its
// contents are process memory and vanish with the process.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// CheckHealth performs a simple liveness check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("runtime closed")
	}
	return ctx.Err()
}

// Buffer returns the shared ring buffer.
func (r *Runtime) Buffer() *logbuf.Buffer { return r.buf }

// Notifier returns the shared append notifier.
func (r *Runtime) Notifier() *logbuf.Notifier { return r.notifier }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
