package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gripp-game/gripp-api/internal/dependencies/clock"
	"github.com/gripp-game/gripp-api/internal/dependencies/random"
	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// LoginIdentifier selects which account field login looks up
type LoginIdentifier string

const (
	LoginByUsername LoginIdentifier = "username"
	LoginByEmail    LoginIdentifier = "email"
)

// maxTokenAttempts bounds regeneration after an access token collision
const maxTokenAttempts = 3

// Config holds configuration for the account service
type Config struct {
	RequireEmail      bool
	LoginIdentifier   LoginIdentifier
	MinPasswordLength int
	TokenBytes        int
}

// DefaultConfig returns default account configuration
func DefaultConfig() Config {
	return Config{
		RequireEmail:      false,
		LoginIdentifier:   LoginByUsername,
		MinPasswordLength: 8,
		TokenBytes:        128,
	}
}

// AccountView is an account as returned to its owner. It never carries the password hash.
type AccountView struct {
	ID          model.AccountID
	Username    string
	Email       string
	AccessToken string
	CreatedAt   time.Time
}

// ProfileView is the public profile of an account
type ProfileView struct {
	Username  string
	CreatedAt time.Time
}

// RegisterInput holds registration parameters
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// Service handles registration, login and access token checks
type Service struct {
	store  storage.AccountStore
	hasher PasswordHasher
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	cfg    Config

	dummyOnce sync.Once
	dummyHash string
}

// New creates a new account Service
func New(
	store storage.AccountStore,
	hasher PasswordHasher,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	cfg Config,
) *Service {
	defaults := DefaultConfig()
	if cfg.LoginIdentifier == "" {
		cfg.LoginIdentifier = defaults.LoginIdentifier
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = defaults.MinPasswordLength
	}
	if cfg.TokenBytes == 0 {
		cfg.TokenBytes = defaults.TokenBytes
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:  store,
		hasher: hasher,
		clock:  clk,
		random: rnd,
		logger: logger,
		cfg:    cfg,
	}
}

// Config returns the service configuration
func (s *Service) Config() Config {
	return s.cfg
}

// Register validates the input and creates a new account
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AccountView, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	if n := utf8.RuneCountInString(username); n < model.MinUsernameLength || n > model.MaxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if utf8.RuneCountInString(input.Password) < s.cfg.MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(input.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if s.cfg.RequireEmail && email == "" {
		return nil, ErrMissingEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:           model.AccountID(uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	for attempt := 1; ; attempt++ {
		account.AccessToken, err = s.random.Token(s.cfg.TokenBytes)
		if err != nil {
			return nil, err
		}

		err = s.store.CreateAccount(ctx, account)
		if err == nil {
			break
		}

		switch {
		case errors.Is(err, model.ErrUsernameTaken):
			return nil, ErrDuplicateUsername
		case errors.Is(err, model.ErrEmailTaken):
			return nil, ErrDuplicateEmail
		case errors.Is(err, model.ErrTokenTaken) && attempt < maxTokenAttempts:
			s.logger.Warn("access token collision, regenerating", "attempt", attempt)
			continue
		}

		s.logger.Error("failed to create account", "username", username, "error", err)
		return nil, storeUnavailable(err)
	}

	s.logger.Info("account registered", "account_id", account.ID, "username", account.Username)
	return newAccountView(account), nil
}

// Login verifies credentials and returns the account including its access token.
// Unknown identifiers and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, identifier, password string) (*AccountView, error) {
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		account *model.Account
		err     error
	)
	switch s.cfg.LoginIdentifier {
	case LoginByEmail:
		account, err = s.store.GetAccountByEmail(ctx, normalizeEmail(identifier))
	default:
		account, err = s.store.GetAccountByUsername(ctx, strings.TrimSpace(identifier))
	}

	if errors.Is(err, model.ErrAccountNotFound) {
		// Spend the same time as a real comparison
		_, _ = s.hasher.Verify(password, s.dummyPasswordHash())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("failed to look up account", "error", err)
		return nil, storeUnavailable(err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.logger.Warn("password verification failed", "account_id", account.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return newAccountView(account), nil
}

// Authenticate resolves an access token to its account.
// Every call costs exactly one store lookup.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, ErrNotAuthorized
	}

	account, err := s.store.GetAccountByToken(ctx, token)
	if errors.Is(err, model.ErrAccountNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		s.logger.Error("failed to look up access token", "error", err)
		return nil, storeUnavailable(err)
	}
	return account, nil
}

// Profile returns the public profile of the account owning token
func (s *Service) Profile(ctx context.Context, token string) (*ProfileView, error) {
	account, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return NewProfileView(account), nil
}

// NewProfileView builds the public profile of an account
func NewProfileView(account *model.Account) *ProfileView {
	return &ProfileView{
		Username:  account.Username,
		CreatedAt: account.CreatedAt,
	}
}

func newAccountView(account *model.Account) *AccountView {
	return &AccountView{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		AccessToken: account.AccessToken,
		CreatedAt:   account.CreatedAt,
	}
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("gripp-dummy-password")
		if err != nil {
			s.logger.Warn("failed to prepare dummy hash", "error", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
