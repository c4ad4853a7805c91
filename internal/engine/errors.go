package engine

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when the pool or registry is mutated outside the idle state.
var ErrFrozen = errors.New("draw in progress: participants and prizes are read-only until reset")

// ValidationError reports a rejected registry mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
