// Package errs defines the error taxonomy shared by adapters, the
// reconciler, and the scheduler. Jobs classify a returned error against
// these sentinels with errors.Is to decide whether it was locally
// recovered or fatal for that run.
package errs

import "errors"

var (
	// ErrSourceUnavailable indicates an upstream transport or protocol
	// failure (non-200, connection refused, timeout). Recovered locally:
	// the job logs a warning and returns without mutating the store.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedPayload indicates the upstream was reachable but its
	// body violated the expected shape. Fatal for the job: no partial
	// work is committed.
	ErrMalformedPayload = errors.New("malformed source payload")

	// ErrStoreFailure indicates a read or write failure against the
	// persistent store. Fatal for the job; any open transaction is
	// rolled back.
	ErrStoreFailure = errors.New("store failure")

	// ErrSafetyAbort indicates the reconciler's mass-deletion safety
	// gate fired: fetched was empty while more than one row was stored.
	ErrSafetyAbort = errors.New("safety abort: refusing mass deletion")

	// ErrConfiguration indicates a startup configuration problem.
	// Unlike the others, this always terminates the process.
	ErrConfiguration = errors.New("configuration error")
)

// SourceUnavailable wraps err so errors.Is(_, ErrSourceUnavailable) succeeds.
func SourceUnavailable(err error) error {
	return wrap(ErrSourceUnavailable, err)
}

// MalformedPayload wraps err so errors.Is(_, ErrMalformedPayload) succeeds.
func MalformedPayload(err error) error {
	return wrap(ErrMalformedPayload, err)
}

// StoreFailure wraps err so errors.Is(_, ErrStoreFailure) succeeds.
func StoreFailure(err error) error {
	return wrap(ErrStoreFailure, err)
}

// Configuration wraps err so errors.Is(_, ErrConfiguration) succeeds.
func Configuration(err error) error {
	return wrap(ErrConfiguration, err)
}

// SafetyAbort wraps err so errors.Is(_, ErrSafetyAbort) succeeds.
func SafetyAbort(err error) error {
	return wrap(ErrSafetyAbort, err)
}

func wrap(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return &taggedError{sentinel: sentinel, cause: err}
}

// taggedError pairs a sentinel classification with the underlying cause,
// preserving both errors.Is (against the sentinel) and the original
// message and %w chain (against the cause).
type taggedError struct {
	sentinel error
	cause    error
}

func (e *taggedError) Error() string {
	return e.cause.Error()
}

func (e *taggedError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}
