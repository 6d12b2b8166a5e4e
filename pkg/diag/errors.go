package diag

import "errors"

var (
	// ErrDuplicateInstance is returned when a batch names the same instance twice.
	ErrDuplicateInstance = errors.New("duplicate instance id")
	ErrEmptyInstanceID   = errors.New("empty instance id")
)
