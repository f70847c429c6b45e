package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/storage"
)

// Unique constraint names from the migrations
const (
	constraintUsername    = "accounts_username_key"
	constraintEmail       = "accounts_email_key"
	constraintAccessToken = "accounts_access_token_key"
	constraintStatementID = "statements_statement_id_key"
)

// Pool is the subset of pgxpool.Pool the store uses
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage is a PostgreSQL implementation of the storage interface
type Storage struct {
	pool Pool
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New connects to databaseURL, applies migrations and returns the store
func New(ctx context.Context, databaseURL string) (*Storage, error) {
	if err := Migrate(databaseURL); err != nil {
		return nil, err
	}

	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").Wrap(err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").Wrap(storage.Unavailable(err))
	}

	return NewWithPool(p), nil
}

// NewWithPool creates a store over an existing pool (for testing)
func NewWithPool(p Pool) *Storage {
	return &Storage{pool: p}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database answers
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("POSTGRES_PING_FAILED").Wrap(storage.Unavailable(err))
	}
	return nil
}

// uniqueViolation returns the violated constraint name, or "" if err is not a unique violation
func uniqueViolation(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
