// Package bootstrap wires configuration, the store, the reconcile engine,
// the configured adapters, and the scheduler into a running process, and
// owns the process's graceful shutdown sequence.
package bootstrap
