// Package retry wraps a storage backend so that idempotent operations are
// retried when the backend reports itself unavailable.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// Config controls the backoff applied to retried operations
type Config struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   time.Second,
	}
}

// Storage decorates another storage.Storage.
// CreateAccount is passed straight through: a retried insert could observe
// its own earlier write as a collision.
type Storage struct {
	next storage.Storage
	cfg  Config
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func New(next storage.Storage, cfg Config) *Storage {
	return &Storage{next: next, cfg: cfg}
}

func (s *Storage) backoff() retry.Backoff {
	base := s.cfg.BaseDelay
	if base <= 0 {
		base = DefaultConfig().BaseDelay
	}
	b := retry.NewExponential(base)
	if s.cfg.MaxDelay > 0 {
		b = retry.WithCappedDuration(s.cfg.MaxDelay, b)
	}
	return retry.WithMaxRetries(s.cfg.MaxRetries, b)
}

func (s *Storage) do(ctx context.Context, f func(ctx context.Context) error) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		err := f(ctx)
		if storage.IsUnavailable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func doValue[T any](ctx context.Context, s *Storage, f func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := s.do(ctx, func(ctx context.Context) error {
		v, err := f(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	return s.next.CreateAccount(ctx, account)
}

func (s *Storage) GetAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return doValue(ctx, s, func(ctx context.Context) (*model.Account, error) {
		return s.next.GetAccountByID(ctx, id)
	})
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return doValue(ctx, s, func(ctx context.Context) (*model.Account, error) {
		return s.next.GetAccountByUsername(ctx, username)
	})
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return doValue(ctx, s, func(ctx context.Context) (*model.Account, error) {
		return s.next.GetAccountByEmail(ctx, email)
	})
}

func (s *Storage) GetAccountByToken(ctx context.Context, token string) (*model.Account, error) {
	return doValue(ctx, s, func(ctx context.Context) (*model.Account, error) {
		return s.next.GetAccountByToken(ctx, token)
	})
}

func (s *Storage) ListStatements(ctx context.Context) ([]model.Statement, error) {
	return doValue(ctx, s, s.next.ListStatements)
}

func (s *Storage) ListStatementsByLevel(ctx context.Context, level int) ([]model.Statement, error) {
	return doValue(ctx, s, func(ctx context.Context) ([]model.Statement, error) {
		return s.next.ListStatementsByLevel(ctx, level)
	})
}

func (s *Storage) GetStatement(ctx context.Context, id model.StatementID) (*model.Statement, error) {
	return doValue(ctx, s, func(ctx context.Context) (*model.Statement, error) {
		return s.next.GetStatement(ctx, id)
	})
}

// ReplaceStatements is retried because each backend applies it as one unit
func (s *Storage) ReplaceStatements(ctx context.Context, statements []model.Statement) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.next.ReplaceStatements(ctx, statements)
	})
}

func (s *Storage) CountStatements(ctx context.Context) (int, error) {
	return doValue(ctx, s, s.next.CountStatements)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Storage) Close() error {
	return s.next.Close()
}
