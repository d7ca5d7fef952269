package models

import "errors"

var (
	// ErrTransientPlatform marks a failed platform call (network, rate limit, non-2xx).
	ErrTransientPlatform = errors.New("transient platform error")
	// ErrStoreUnavailable marks a policy or list read that could not be served.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMalformedConfig is returned when operator input fails validation.
	ErrMalformedConfig = errors.New("malformed configuration")
)
