package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not in the transition table
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not part of the lifecycle
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidRole is returned when a role is not recognised
	ErrInvalidRole = errors.New("invalid role")

	// ErrUnknownIntent is returned when an intent is not in the catalog
	ErrUnknownIntent = errors.New("unknown intent")
)
