// Package logssvc serves log stream sessions: an initial backfill of
// everything retained that matches the session's filters, then a live
// tail that blocks on the bus notifier until new data or a heartbeat
// deadline, repeating until the consumer disconnects.
//
// Filtering is applied after retrieval and before transmission; entries a
// filter rejects still advance the session cursor, so they are seen once
// and never redelivered. Transport is abstracted behind Sink so HTTP/SSE
// and tests share the same session loop.
package logssvc
