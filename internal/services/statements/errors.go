package statements

import (
	"errors"
	"fmt"
)

// Kind classifies statement query errors
type Kind string

const (
	KindInvalidLevel     Kind = "INVALID_LEVEL"
	KindNotFound         Kind = "NOT_FOUND"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
)

// Error is the error type returned by the statement service
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidLevel     = &Error{Kind: KindInvalidLevel, Message: "level must be a positive integer"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "statement not found"}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable, Message: "statement store unavailable"}
)

func invalidLevel(raw string) *Error {
	return &Error{Kind: KindInvalidLevel, Message: fmt.Sprintf("invalid level %q: must be a positive integer", raw)}
}

func storeUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: ErrStoreUnavailable.Message, Err: err}
}
