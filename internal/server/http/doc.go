// Package httpserver provides the REST gateway for soyuznikrr's log bus:
// an SSE live-tail endpoint, a one-shot snapshot endpoint, health, and
// Prometheus metrics.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	svc := logssvc.New(rt, logger)
//	s := httpserver.New(rt, svc, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8248")
package httpserver
