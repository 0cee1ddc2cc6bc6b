package domain

import "errors"

// Sentinel errors shared across services, the store, and the delivery layer.
var (
	// ErrNotFound is returned when an event or question does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the supplied token grants no access to the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned for malformed or oversized input, before any state change.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateLimited is returned when a fingerprint exceeds its mutation budget.
	ErrRateLimited = errors.New("rate limited")
)
