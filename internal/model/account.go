package model

import "time"

// AccountID uniquely identifies an account
type AccountID string

// Account is a registered user of the game
type Account struct {
	ID           AccountID
	Username     string // trimmed, unique
	Email        string // lowercased, unique when set
	PasswordHash string // bcrypt hash, never returned to clients
	AccessToken  string // permanent bearer credential
	CreatedAt    time.Time
}

// Username length bounds
const (
	MinUsernameLength = 4
	MaxUsernameLength = 18
)
