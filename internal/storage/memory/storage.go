package memory

import (
	"context"
	"sync"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
	emailIndex    map[string]model.AccountID
	tokenIndex    map[string]model.AccountID

	statements     []model.Statement
	statementIndex map[model.StatementID]int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:       make(map[model.AccountID]*model.Account),
		usernameIndex:  make(map[string]model.AccountID),
		emailIndex:     make(map[string]model.AccountID),
		tokenIndex:     make(map[string]model.AccountID),
		statementIndex: make(map[model.StatementID]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Lifecycle

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness checks and insert happen under the same write lock
	if _, ok := s.usernameIndex[account.Username]; ok {
		return model.ErrUsernameTaken
	}
	if account.Email != "" {
		if _, ok := s.emailIndex[account.Email]; ok {
			return model.ErrEmailTaken
		}
	}
	if _, ok := s.tokenIndex[account.AccessToken]; ok {
		return model.ErrTokenTaken
	}

	stored := *account
	s.accounts[account.ID] = &stored
	s.usernameIndex[account.Username] = account.ID
	if account.Email != "" {
		s.emailIndex[account.Email] = account.ID
	}
	s.tokenIndex[account.AccessToken] = account.ID
	return nil
}

func (s *Storage) GetAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountLocked(id)
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.accountLocked(id)
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok || email == "" {
		return nil, model.ErrAccountNotFound
	}
	return s.accountLocked(id)
}

func (s *Storage) GetAccountByToken(ctx context.Context, token string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokenIndex[token]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.accountLocked(id)
}

// accountLocked returns a copy of the account; caller holds the lock
func (s *Storage) accountLocked(id model.AccountID) (*model.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	result := *account
	return &result, nil
}

// Statement operations

func (s *Storage) ListStatements(ctx context.Context) ([]model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]model.Statement, len(s.statements))
	copy(result, s.statements)
	return result, nil
}

func (s *Storage) ListStatementsByLevel(ctx context.Context, level int) ([]model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []model.Statement{}
	for _, st := range s.statements {
		if st.Level == level {
			result = append(result, st)
		}
	}
	return result, nil
}

func (s *Storage) GetStatement(ctx context.Context, id model.StatementID) (*model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.statementIndex[id]
	if !ok {
		return nil, model.ErrStatementNotFound
	}
	st := s.statements[idx]
	return &st, nil
}

func (s *Storage) ReplaceStatements(ctx context.Context, statements []model.Statement) error {
	index := make(map[model.StatementID]int, len(statements))
	for i, st := range statements {
		if _, ok := index[st.ID]; ok {
			return model.ErrDuplicateStatement
		}
		index[st.ID] = i
	}

	replacement := make([]model.Statement, len(statements))
	copy(replacement, statements)

	// Swap the whole catalog at once so readers never see a partial set
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = replacement
	s.statementIndex = index
	return nil
}

func (s *Storage) CountStatements(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statements), nil
}
