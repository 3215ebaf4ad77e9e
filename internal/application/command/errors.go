package command

import "errors"

var (
	// ErrUnknownCommand is returned when a command id is not registered
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDuplicateCommand is returned when a command id is registered twice
	ErrDuplicateCommand = errors.New("command already registered")

	// ErrReversibilityUndeclared is returned for commands that neither
	// provide a compensator nor declare themselves irreversible, or do both
	ErrReversibilityUndeclared = errors.New("command must either implement Rollback or be marked irreversible")

	// ErrIrreversible is returned when rolling back an irreversible command
	ErrIrreversible = errors.New("command is irreversible")
)
