package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, such as a second stamp for the same member and day or a
	// club name already taken within a guild.
	ErrDuplicate = errors.New("persistence: duplicate")
)
