package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// CreateAccount inserts an account; unique constraints make the insert atomic
func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	// Empty email is stored as NULL so it never collides
	var email *string
	if account.Email != "" {
		email = &account.Email
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, access_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		string(account.ID),
		account.Username,
		email,
		account.PasswordHash,
		account.AccessToken,
		account.CreatedAt,
	)
	if err == nil {
		return nil
	}

	switch uniqueViolation(err) {
	case constraintUsername:
		return model.ErrUsernameTaken
	case constraintEmail:
		return model.ErrEmailTaken
	case constraintAccessToken:
		return model.ErrTokenTaken
	}

	return oops.Code("ACCOUNT_CREATE_FAILED").
		With("operation", "insert account").
		With("username", account.Username).
		Wrap(storage.Unavailable(err))
}

// GetAccountByID retrieves an account by id.
func (s *Storage) GetAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, access_token, created_at
		FROM accounts
		WHERE id = $1
	`, string(id))
	return scanAccount(row, "id")
}

// GetAccountByUsername retrieves an account by its exact username.
func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, access_token, created_at
		FROM accounts
		WHERE username = $1
	`, username)
	return scanAccount(row, "username")
}

// GetAccountByEmail retrieves an account by its normalized email.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	if email == "" {
		return nil, model.ErrAccountNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, access_token, created_at
		FROM accounts
		WHERE email = $1
	`, email)
	return scanAccount(row, "email")
}

// GetAccountByToken retrieves the account owning an access token.
func (s *Storage) GetAccountByToken(ctx context.Context, token string) (*model.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, access_token, created_at
		FROM accounts
		WHERE access_token = $1
	`, token)
	return scanAccount(row, "access_token")
}

func scanAccount(row pgx.Row, lookup string) (*model.Account, error) {
	var (
		account model.Account
		id      string
		email   *string
	)

	err := row.Scan(
		&id,
		&account.Username,
		&email,
		&account.PasswordHash,
		&account.AccessToken,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAccountNotFound
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by "+lookup).
			Wrap(storage.Unavailable(err))
	}

	account.ID = model.AccountID(id)
	if email != nil {
		account.Email = *email
	}
	return &account, nil
}
