// Package client provides the `soyuznikrr logs` command group.
//
// The CLI talks to the soyuznikrr HTTP API to tail or list captured log
// entries from a terminal. It is primarily intended for developers and
// operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it is
// read from the SOYUZNIKRR_HTTP environment variable and defaults to
// http://127.0.0.1:8248.
//
// Usage
//
//	# Follow the live log stream
//	soyuznikrr logs tail
//
//	# Only warnings and above from the API layer
//	soyuznikrr logs tail --level WARNING --source soyuznikrr.api
//
//	# CEL expression evaluated server-side against each entry
//	soyuznikrr logs tail --filter 'message.contains("invite")'
//
//	# Resume after a known sequence number
//	soyuznikrr logs tail --after-seq 1234
//
//	# One-shot snapshot of the retained buffer
//	soyuznikrr logs list --limit 50
package client
