package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

var accountColumns = []string{"id", "username", "email", "password_hash", "access_token", "created_at"}

func newMockStorage(t *testing.T) (*Storage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithPool(mock), mock
}

func testAccount() *model.Account {
	return &model.Account{
		ID:           "acc-1",
		Username:     "alice1",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		AccessToken:  "token-1",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestCreateAccount(t *testing.T) {
	s, mock := newMockStorage(t)
	acc := testAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("acc-1", "alice1", &acc.Email, "hash", "token-1", acc.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateAccount(context.Background(), acc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountWithoutEmailStoresNull(t *testing.T) {
	s, mock := newMockStorage(t)
	acc := testAccount()
	acc.Email = ""

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("acc-1", "alice1", (*string)(nil), "hash", "token-1", acc.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateAccount(context.Background(), acc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "username", constraint: constraintUsername, want: model.ErrUsernameTaken},
		{name: "email", constraint: constraintEmail, want: model.ErrEmailTaken},
		{name: "token", constraint: constraintAccessToken, want: model.ErrTokenTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)

			mock.ExpectExec("INSERT INTO accounts").
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tt.constraint})

			err := s.CreateAccount(context.Background(), testAccount())
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateAccountConnectionFailureIsUnavailable(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	err := s.CreateAccount(context.Background(), testAccount())
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestGetAccountByToken(t *testing.T) {
	s, mock := newMockStorage(t)
	acc := testAccount()

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("token-1").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("acc-1", "alice1", &acc.Email, "hash", "token-1", acc.CreatedAt))

	got, err := s.GetAccountByToken(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, acc, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccountNullEmail(t *testing.T) {
	s, mock := newMockStorage(t)
	acc := testAccount()

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("alice1").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("acc-1", "alice1", (*string)(nil), "hash", "token-1", acc.CreatedAt))

	got, err := s.GetAccountByUsername(context.Background(), "alice1")
	require.NoError(t, err)
	assert.Empty(t, got.Email)
}

func TestGetAccountNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(accountColumns))

	_, err := s.GetAccountByID(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccountByEmptyEmailSkipsQuery(t *testing.T) {
	s, mock := newMockStorage(t)

	_, err := s.GetAccountByEmail(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStatementsByLevel(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT statement_id, text, level FROM statements WHERE level").
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"statement_id", "text", "level"}).
			AddRow("s2", "has been to Paris", 1).
			AddRow("s4", "owns a cat", 1))

	got, err := s.ListStatementsByLevel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Statement{
		{ID: "s2", Text: "has been to Paris", Level: 1},
		{ID: "s4", Text: "owns a cat", Level: 1},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStatementsEmptyIsNonNil(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT statement_id, text, level FROM statements ORDER BY seq").
		WillReturnRows(pgxmock.NewRows([]string{"statement_id", "text", "level"}))

	got, err := s.ListStatements(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetStatementNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT statement_id, text, level FROM statements WHERE statement_id").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"statement_id", "text", "level"}))

	_, err := s.GetStatement(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrStatementNotFound)
}

func TestReplaceStatementsCommits(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM statements").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("INSERT INTO statements").
		WithArgs("s1", "one", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO statements").
		WithArgs("s2", "two", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.ReplaceStatements(context.Background(), []model.Statement{
		{ID: "s1", Text: "one", Level: 1},
		{ID: "s2", Text: "two", Level: 2},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceStatementsRollsBackOnDuplicate(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM statements").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO statements").
		WithArgs("s1", "one", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO statements").
		WithArgs("s1", "again", 1).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintStatementID})
	mock.ExpectRollback()

	err := s.ReplaceStatements(context.Background(), []model.Statement{
		{ID: "s1", Text: "one", Level: 1},
		{ID: "s1", Text: "again", Level: 1},
	})
	assert.ErrorIs(t, err, model.ErrDuplicateStatement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountStatements(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	n, err := s.CountStatements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPingFailureIsUnavailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	s := NewWithPool(mock)

	mock.ExpectPing().WillReturnError(errors.New("down"))

	err = s.Ping(context.Background())
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@host/db", migrateURL("postgres://u:p@host/db"))
	assert.Equal(t, "pgx5://u:p@host/db", migrateURL("postgresql://u:p@host/db"))
	assert.Equal(t, "pgx5://host/db", migrateURL("pgx5://host/db"))
}
