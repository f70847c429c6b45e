package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already taken")
	ErrTokenTaken      = errors.New("access token already issued")

	// Statement errors
	ErrStatementNotFound  = errors.New("statement not found")
	ErrDuplicateStatement = errors.New("duplicate statement id")
)
