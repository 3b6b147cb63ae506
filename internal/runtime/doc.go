// Package runtime wires the log bus components into a single process
// instance: the ring buffer, the notifier, and configuration. It exposes
// Open/Close, the startup Bind that attaches the notifier dispatcher, and
// basic health checks.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	rt.Bind(ctx) // once, before the first stream connection
//	_ = rt.CheckHealth(ctx)
package runtime
