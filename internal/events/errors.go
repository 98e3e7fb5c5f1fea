package events

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("event not found")

	// ErrInvalidDateTime matches any *DateTimeError.
	ErrInvalidDateTime = errors.New("invalid ISO 8601 date-time")

	// ErrZoomIDNotFound is returned when an event carries no ZoomId property.
	ErrZoomIDNotFound = errors.New("zoom id property not found")

	// ErrMissingZoomID is returned by zoom-keyed operations given no zoom id.
	ErrMissingZoomID = errors.New("zoom id is required")
)

// NotFoundError means no event in the user's calendar matched the zoom id.
type NotFoundError struct {
	UserID string
	ZoomID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no event with zoom id %q in calendar of %s", e.ZoomID, e.UserID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DateTimeError reports an unparsable start or end time.
type DateTimeError struct {
	Field string
	Value string
}

func (e *DateTimeError) Error() string {
	return fmt.Sprintf("invalid isoformat string for %s: %q", e.Field, e.Value)
}

// Unwrap returns ErrInvalidDateTime.
func (e *DateTimeError) Unwrap() error {
	return ErrInvalidDateTime
}
