// Package controllers contains the HTTP handlers for the log bus API:
// the SSE live-tail stream, the one-shot snapshot, and health.
package controllers
