package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalid covers missing or malformed caller input.
	ErrInvalid = errors.New("invalid request")

	// ErrUnauthorized means no credential was presented at all; ErrAuthFailed
	// means a credential was presented and refused by the identity provider.
	ErrUnauthorized = errors.New("missing credential")
	ErrAuthFailed   = errors.New("credential rejected")

	// ErrUpstream marks transient transport failures (content store, identity
	// provider, cache).
	ErrUpstream = errors.New("upstream unavailable")
)
