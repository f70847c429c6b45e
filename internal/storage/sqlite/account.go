package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

const accountColumns = `id, username, email, password_hash, access_token, created_at`

// CreateAccount inserts an account; the UNIQUE constraints make the insert atomic
func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, password_hash, access_token, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	// Empty email is stored as NULL so it never collides
	var email sql.NullString
	if account.Email != "" {
		email = sql.NullString{String: account.Email, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		string(account.ID),
		account.Username,
		email,
		account.PasswordHash,
		account.AccessToken,
		account.CreatedAt,
	)

	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, "accounts.username"):
		return model.ErrUsernameTaken
	case isUniqueViolation(err, "accounts.email"):
		return model.ErrEmailTaken
	case isUniqueViolation(err, "accounts.access_token"):
		return model.ErrTokenTaken
	default:
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(storage.Unavailable(err))
	}
}

func (s *Storage) GetAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.getAccount(ctx, "id", string(id))
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.getAccount(ctx, "username", username)
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	if email == "" {
		return nil, model.ErrAccountNotFound
	}
	return s.getAccount(ctx, "email", email)
}

func (s *Storage) GetAccountByToken(ctx context.Context, token string) (*model.Account, error) {
	return s.getAccount(ctx, "access_token", token)
}

// getAccount loads one account by a unique column; column is never user input
func (s *Storage) getAccount(ctx context.Context, column, value string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = ?`

	account := &model.Account{}
	var id string
	var email sql.NullString

	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&id,
		&account.Username,
		&email,
		&account.PasswordHash,
		&account.AccessToken,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by "+column).
			Wrap(storage.Unavailable(err))
	}

	account.ID = model.AccountID(id)
	account.Email = email.String
	return account, nil
}
