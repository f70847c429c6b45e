package storage

import (
	"context"

	"github.com/gripp-game/gripp-api/internal/model"
)

// AccountStore persists accounts.
// CreateAccount must enforce username, email and token uniqueness atomically:
// of two concurrent inserts with the same username exactly one succeeds.
type AccountStore interface {
	// CreateAccount inserts a new account.
	// Returns model.ErrUsernameTaken, model.ErrEmailTaken or model.ErrTokenTaken on collision.
	// An empty Email is never considered a collision.
	CreateAccount(ctx context.Context, account *model.Account) error

	// GetAccountByID returns model.ErrAccountNotFound if missing
	GetAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByToken(ctx context.Context, token string) (*model.Account, error)
}

// StatementStore persists the statement catalog.
// Listings return statements in insertion order.
type StatementStore interface {
	ListStatements(ctx context.Context) ([]model.Statement, error)
	ListStatementsByLevel(ctx context.Context, level int) ([]model.Statement, error)

	// GetStatement returns model.ErrStatementNotFound if missing
	GetStatement(ctx context.Context, id model.StatementID) (*model.Statement, error)

	// ReplaceStatements clears the catalog and inserts the given statements
	// as a single unit of work.
	ReplaceStatements(ctx context.Context, statements []model.Statement) error

	CountStatements(ctx context.Context) (int, error)
}

// Storage combines every store with lifecycle operations
type Storage interface {
	AccountStore
	StatementStore

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
