package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound = errors.New("resource not found")

	// Store errors
	ErrConstraintViolation = errors.New("uniqueness constraint violated")
	ErrInUse               = errors.New("resource still referenced")
	ErrInvalidTransition   = errors.New("invalid status transition")

	// Validation errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidPeriod = errors.New("invalid period token")

	// External augmentation errors (recoverable inside the relevance
	// engine, never propagated past it)
	ErrExternalCallFailed   = errors.New("external call failed")
	ErrExternalCallDegraded = errors.New("external call returned unusable output")
)
