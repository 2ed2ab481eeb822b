package model

import "errors"

var (
	// ErrInsufficientInput is returned when a text is too short to extract features
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrMalformedRecord marks a corpus row missing required fields
	ErrMalformedRecord = errors.New("malformed record")

	// ErrExternalService wraps failures of embedding, search, or index calls
	ErrExternalService = errors.New("external service failure")

	// ErrNotFound is returned when a stored record does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnknownStrategy is returned for an unregistered scoring strategy name
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
)
