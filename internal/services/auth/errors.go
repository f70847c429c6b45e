package auth

import (
	"errors"
	"fmt"
)

// Kind classifies account errors
type Kind string

const (
	KindWeakPassword       Kind = "WEAK_PASSWORD"
	KindInvalidUsername    Kind = "INVALID_USERNAME"
	KindMissingEmail       Kind = "MISSING_EMAIL"
	KindDuplicateIdentity  Kind = "DUPLICATE_IDENTITY"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindNotAuthorized      Kind = "NOT_AUTHORIZED"
	KindStoreUnavailable   Kind = "STORE_UNAVAILABLE"
)

// Fields an account error can point at
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Error is the error type returned by the account service.
// Field narrows the Kind when set; Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Field   string
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

// Is matches on Kind, and on Field when the target sets one
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// Sentinels for errors.Is
var (
	ErrWeakPassword       = &Error{Kind: KindWeakPassword, Message: "password must be at least 8 characters"}
	ErrPasswordTooLong    = &Error{Kind: KindWeakPassword, Field: FieldPassword, Message: "password must be at most 72 bytes"}
	ErrInvalidUsername    = &Error{Kind: KindInvalidUsername, Message: "username must be between 4 and 18 characters"}
	ErrMissingEmail       = &Error{Kind: KindMissingEmail, Message: "email is required"}
	ErrDuplicateIdentity  = &Error{Kind: KindDuplicateIdentity, Message: "account already exists"}
	ErrDuplicateUsername  = &Error{Kind: KindDuplicateIdentity, Field: FieldUsername, Message: "username is already taken"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateIdentity, Field: FieldEmail, Message: "email is already registered"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrNotAuthorized      = &Error{Kind: KindNotAuthorized, Message: "not authorized"}
	ErrStoreUnavailable   = &Error{Kind: KindStoreUnavailable, Message: "account store unavailable"}
)

func storeUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: ErrStoreUnavailable.Message, Err: err}
}
