// Package acme provides ACME protocol constants. See RFC 8555.
package acme

const (
	// Directory constants
	// See https://tools.ietf.org/html/rfc8555#section-9.7.5

	// The ACME directory key for the newNonce endpoint
	NEW_NONCE_ENDPOINT = "newNonce"
	// The ACME directory key for the newAccount endpoint.
	NEW_ACCOUNT_ENDPOINT = "newAccount"
	// The ACME directory key for the newOrder endpoint.
	NEW_ORDER_ENDPOINT = "newOrder"

	// The HTTP response header used by ACME to communicate a fresh nonce. See
	// https://tools.ietf.org/html/rfc8555#section-9.3
	REPLAY_NONCE_HEADER = "Replay-Nonce"

	// The challenge type this client solves. See
	// https://tools.ietf.org/html/rfc8555#section-8.3
	CHALLENGE_TYPE_HTTP01 = "http-01"

	// The well-known URL prefix at which HTTP-01 key authorizations must be
	// served during validation.
	CHALLENGE_PATH_PREFIX = "/.well-known/acme-challenge/"
)

// Status values shared by the Order, Authorization and Challenge resources.
// See https://tools.ietf.org/html/rfc8555#section-7.1.6
const (
	StatusPending     = "pending"
	StatusReady       = "ready"
	StatusProcessing  = "processing"
	StatusValid       = "valid"
	StatusInvalid     = "invalid"
	StatusExpired     = "expired"
	StatusRevoked     = "revoked"
	StatusDeactivated = "deactivated"
)
