package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a transient persistence failure (connection loss, timeout, busy database)
var ErrUnavailable = errors.New("storage unavailable")

// Unavailable marks err as a transient persistence failure.
// The returned error matches both ErrUnavailable and err.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// IsUnavailable reports whether err is a transient persistence failure
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
