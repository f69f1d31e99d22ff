package position

import "errors"

// Sentinel errors for position operations.
var (
	// ErrSourceNotFound indicates the requested position source does not exist.
	ErrSourceNotFound = errors.New("position: source not found")

	// ErrSourceExists indicates a create collided with an existing source ID.
	ErrSourceExists = errors.New("position: source already exists")

	// ErrInvalidUpdate indicates a malformed position update payload or topic.
	ErrInvalidUpdate = errors.New("position: invalid update")
)
