package acme

import "errors"

// Issuance failure taxonomy. Every failure produced while driving an order to
// issuance wraps one of these sentinels so callers can classify the outcome
// with errors.Is. All of them are fatal to the issuance attempt.
var (
	// ErrNetwork indicates the ACME server was unreachable.
	ErrNetwork = errors.New("acme: server unreachable")
	// ErrProtocol indicates an unexpected status code or a malformed/missing
	// field in an ACME response.
	ErrProtocol = errors.New("acme: unexpected server response")
	// ErrValidationFailure indicates the server marked an authorization
	// invalid. The challenge is not retried.
	ErrValidationFailure = errors.New("acme: authorization validation failed")
	// ErrTimeout indicates a polling attempt budget was exhausted.
	ErrTimeout = errors.New("acme: polling attempt budget exhausted")
)
