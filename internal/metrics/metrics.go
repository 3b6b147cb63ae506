// Package metrics exposes Prometheus collectors for the log bus and its
// streaming sessions.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LogEntriesCaptured counts records captured into the ring buffer.
	LogEntriesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soyuznikrr_log_entries_captured_total",
		Help: "Log records captured into the in-process ring buffer.",
	})

	// LogEntriesDelivered counts entries sent to stream consumers.
	LogEntriesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soyuznikrr_log_entries_delivered_total",
		Help: "Log entries delivered to streaming consumers after filtering.",
	})

	// LogHeartbeatsSent counts heartbeat frames emitted on idle streams.
	LogHeartbeatsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soyuznikrr_log_heartbeats_sent_total",
		Help: "Heartbeat frames sent on idle log streams.",
	})

	// LogSessionsActive gauges currently connected stream sessions.
	LogSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soyuznikrr_log_sessions_active",
		Help: "Currently connected log stream sessions.",
	})

	// The eviction gauge reads whichever accessor RegisterEvicted bound
	// last, so a runtime reopened in-process reports its own buffer.
	evictedMu   sync.Mutex
	evictedFn   func() uint64
	evictedOnce sync.Once
)

// RegisterEvicted binds the eviction gauge to the buffer's Evicted
// accessor. A later call rebinds the gauge to the new buffer; the
// collector itself is registered once per process.
func RegisterEvicted(evicted func() uint64) {
	evictedMu.Lock()
	evictedFn = evicted
	evictedMu.Unlock()
	evictedOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "soyuznikrr_log_entries_evicted_total",
			Help: "Log entries evicted from the ring buffer to honor capacity.",
		}, evictedValue)
	})
}

func evictedValue() float64 {
	evictedMu.Lock()
	fn := evictedFn
	evictedMu.Unlock()
	if fn == nil {
		return 0
	}
	return float64(fn())
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
