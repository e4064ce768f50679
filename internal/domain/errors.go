package domain

import "errors"

var (
	// ErrNotFound indicates a missing knowledge record or tenant.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates a malformed inbound request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized indicates a missing or wrong admin key.
	ErrUnauthorized = errors.New("unauthorized")
)
