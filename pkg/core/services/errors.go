package services

import "errors"

var (
	// ErrDataUnavailable is returned when availability or requirements cannot be read, or are malformed.
	// The run is aborted before any assignment is made.
	ErrDataUnavailable = errors.New("scheduling data unavailable")

	// ErrPersistenceFailed is returned when committing a schedule fails. Nothing is persisted.
	ErrPersistenceFailed = errors.New("failed to persist schedule")

	// ErrValidationFailed is returned when a schedule has validation errors and was not force-committed
	ErrValidationFailed = errors.New("schedule failed validation")
)
