// Package storagetest holds the behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// Suite runs the shared storage behaviour against a backend.
// NewStorage is called once per test and must return an empty store.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	storage storage.Storage
	ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.storage = s.NewStorage()
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// Storage returns the store under test
func (s *Suite) Storage() storage.Storage {
	return s.storage
}

func newAccount(n int) *model.Account {
	return &model.Account{
		ID:           model.AccountID(fmt.Sprintf("acct-%d", n)),
		Username:     fmt.Sprintf("user%d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "hash",
		AccessToken:  fmt.Sprintf("token-%d", n),
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func catalog() []model.Statement {
	return []model.Statement{
		{ID: "s1", Text: "first", Level: 3},
		{ID: "s2", Text: "second", Level: 1},
		{ID: "s3", Text: "third", Level: 2},
		{ID: "s4", Text: "fourth", Level: 1},
	}
}

// Account tests

func (s *Suite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))
}

func (s *Suite) TestCreateAndGetAccount() {
	account := newAccount(1)
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account))

	byID, err := s.storage.GetAccountByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(account.Username, byID.Username)
	s.Equal(account.Email, byID.Email)
	s.Equal(account.PasswordHash, byID.PasswordHash)
	s.Equal(account.AccessToken, byID.AccessToken)
	s.True(account.CreatedAt.Equal(byID.CreatedAt))

	byName, err := s.storage.GetAccountByUsername(s.ctx, "user1")
	s.Require().NoError(err)
	s.Equal(account.ID, byName.ID)

	byEmail, err := s.storage.GetAccountByEmail(s.ctx, "user1@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, byEmail.ID)

	byToken, err := s.storage.GetAccountByToken(s.ctx, "token-1")
	s.Require().NoError(err)
	s.Equal(account.ID, byToken.ID)
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccountByID(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.storage.GetAccountByUsername(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.storage.GetAccountByEmail(s.ctx, "missing@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.storage.GetAccountByToken(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestTokenLookupIsCaseSensitive() {
	account := newAccount(1)
	account.AccessToken = "abcdef"
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account))

	_, err := s.storage.GetAccountByToken(s.ctx, "ABCDEF")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestCreateAccountDuplicateUsername() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount(1)))

	dup := newAccount(2)
	dup.Username = "user1"
	err := s.storage.CreateAccount(s.ctx, dup)
	s.ErrorIs(err, model.ErrUsernameTaken)

	// Nothing from the rejected insert is visible
	_, err = s.storage.GetAccountByToken(s.ctx, dup.AccessToken)
	s.ErrorIs(err, model.ErrAccountNotFound)
	_, err = s.storage.GetAccountByEmail(s.ctx, dup.Email)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestCreateAccountDuplicateEmail() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount(1)))

	dup := newAccount(2)
	dup.Email = "user1@example.com"
	err := s.storage.CreateAccount(s.ctx, dup)
	s.ErrorIs(err, model.ErrEmailTaken)

	_, err = s.storage.GetAccountByUsername(s.ctx, dup.Username)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestCreateAccountDuplicateToken() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount(1)))

	dup := newAccount(2)
	dup.AccessToken = "token-1"
	err := s.storage.CreateAccount(s.ctx, dup)
	s.ErrorIs(err, model.ErrTokenTaken)
}

func (s *Suite) TestEmptyEmailsDoNotCollide() {
	a := newAccount(1)
	a.Email = ""
	b := newAccount(2)
	b.Email = ""

	s.Require().NoError(s.storage.CreateAccount(s.ctx, a))
	s.Require().NoError(s.storage.CreateAccount(s.ctx, b))

	_, err := s.storage.GetAccountByEmail(s.ctx, "")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestConcurrentDuplicateUsernameExactlyOneWins() {
	const contenders = 8

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account := newAccount(100 + i)
			account.Username = "contested"
			errs[i] = s.storage.CreateAccount(s.ctx, account)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrUsernameTaken)
	}
	s.Equal(1, succeeded)
}

// Statement tests

func (s *Suite) TestEmptyCatalog() {
	all, err := s.storage.ListStatements(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)

	count, err := s.storage.CountStatements(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *Suite) TestReplaceAndListStatementsPreservesOrder() {
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, catalog()))

	all, err := s.storage.ListStatements(s.ctx)
	s.Require().NoError(err)
	s.Equal(catalog(), all)

	count, err := s.storage.CountStatements(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, count)
}

func (s *Suite) TestReplaceStatementsClearsPreviousCatalog() {
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, catalog()))

	replacement := []model.Statement{{ID: "n1", Text: "new", Level: 2}}
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, replacement))

	all, err := s.storage.ListStatements(s.ctx)
	s.Require().NoError(err)
	s.Equal(replacement, all)

	_, err = s.storage.GetStatement(s.ctx, "s1")
	s.ErrorIs(err, model.ErrStatementNotFound)

	byLevel, err := s.storage.ListStatementsByLevel(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(byLevel)
}

func (s *Suite) TestReplaceStatementsRejectsDuplicateIDs() {
	dup := []model.Statement{
		{ID: "x", Text: "one", Level: 1},
		{ID: "x", Text: "two", Level: 2},
	}
	err := s.storage.ReplaceStatements(s.ctx, dup)
	s.ErrorIs(err, model.ErrDuplicateStatement)
}

func (s *Suite) TestListStatementsByLevel() {
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, catalog()))

	levelOne, err := s.storage.ListStatementsByLevel(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]model.Statement{
		{ID: "s2", Text: "second", Level: 1},
		{ID: "s4", Text: "fourth", Level: 1},
	}, levelOne)
}

func (s *Suite) TestListStatementsByLevelNoMatchIsEmptyNotNil() {
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, catalog()))

	none, err := s.storage.ListStatementsByLevel(s.ctx, 9)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *Suite) TestGetStatement() {
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, catalog()))

	st, err := s.storage.GetStatement(s.ctx, "s3")
	s.Require().NoError(err)
	s.Equal(model.StatementID("s3"), st.ID)
	s.Equal("third", st.Text)
	s.Equal(2, st.Level)
}

func (s *Suite) TestGetStatementNotFound() {
	_, err := s.storage.GetStatement(s.ctx, "nope")
	s.ErrorIs(err, model.ErrStatementNotFound)
}
