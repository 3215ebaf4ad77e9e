package port

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict is returned when a record's status changed underneath a compare-and-set
	ErrStatusConflict = errors.New("status conflict")
)
