// Package serverrun wires configuration, logging, the log bus runtime,
// and the HTTP server into a running soyuznikrr instance.
package serverrun
