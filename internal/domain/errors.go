package domain

import (
	"errors"
)

var (
	// ErrNotificationNotFound is returned when an action succeeded remotely but
	// the notification is no longer held by the store.
	ErrNotificationNotFound = errors.New("notification not found in store")

	// ErrInvalidNotificationID is returned when the notification ID is invalid.
	ErrInvalidNotificationID = errors.New("invalid notification ID")

	// ErrInvalidPredicate is returned when predicate options cannot be parsed.
	ErrInvalidPredicate = errors.New("invalid predicate")

	// ErrUnknownEvent is returned when a realtime message cannot be decoded.
	ErrUnknownEvent = errors.New("unknown realtime event")
)
