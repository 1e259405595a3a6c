package locator

import "errors"

var (
	// ErrEmptyRing is returned by ring-order queries on a ring without tokens.
	ErrEmptyRing = errors.New("token ring is empty")

	// ErrTokenNotFound is returned by GetEndpoint for a token that is not on the ring.
	ErrTokenNotFound = errors.New("token not found on ring")

	// ErrEmptyTokenSet is returned when an endpoint is updated with no tokens.
	ErrEmptyTokenSet = errors.New("endpoint token set is empty")

	// ErrHostIDConflict is returned when a host id association would stop being one-to-one.
	ErrHostIDConflict = errors.New("host id is already associated with another endpoint")

	ErrInvalidReplicationFactor = errors.New("invalid replication_factor")
	ErrUnknownStrategy          = errors.New("unknown replication strategy")
	ErrStrategyRegistered       = errors.New("replication strategy already registered")
)
