package energy

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTimestamp = errors.New("timestamp missing")
	// ErrMissingReading is returned when one of the four cumulative electricity
	// readings is absent. A well formed feed always carries them.
	ErrMissingReading = errors.New("cumulative reading missing")
)

type TimestampError struct {
	Field string
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}
