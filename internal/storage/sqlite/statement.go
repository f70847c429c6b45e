package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

func (s *Storage) ListStatements(ctx context.Context) ([]model.Statement, error) {
	query := `SELECT statement_id, text, level FROM statements ORDER BY seq`
	return s.queryStatements(ctx, query)
}

func (s *Storage) ListStatementsByLevel(ctx context.Context, level int) ([]model.Statement, error) {
	query := `SELECT statement_id, text, level FROM statements WHERE level = ? ORDER BY seq`
	return s.queryStatements(ctx, query, level)
}

func (s *Storage) queryStatements(ctx context.Context, query string, args ...any) ([]model.Statement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").Wrap(storage.Unavailable(err))
	}
	defer rows.Close()

	statements := []model.Statement{}
	for rows.Next() {
		var st model.Statement
		var id string
		if err := rows.Scan(&id, &st.Text, &st.Level); err != nil {
			return nil, oops.Code("STATEMENT_LIST_FAILED").With("operation", "scan statement").Wrap(err)
		}
		st.ID = model.StatementID(id)
		statements = append(statements, st)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").Wrap(storage.Unavailable(err))
	}

	return statements, nil
}

func (s *Storage) GetStatement(ctx context.Context, id model.StatementID) (*model.Statement, error) {
	query := `SELECT statement_id, text, level FROM statements WHERE statement_id = ?`

	st := &model.Statement{}
	var sid string
	err := s.db.QueryRowContext(ctx, query, string(id)).Scan(&sid, &st.Text, &st.Level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrStatementNotFound
		}
		return nil, oops.Code("STATEMENT_GET_FAILED").With("id", string(id)).Wrap(storage.Unavailable(err))
	}
	st.ID = model.StatementID(sid)
	return st, nil
}

// ReplaceStatements clears and repopulates the catalog inside one transaction
func (s *Storage) ReplaceStatements(ctx context.Context, statements []model.Statement) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").Wrap(storage.Unavailable(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM statements`); err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").With("operation", "clear").Wrap(storage.Unavailable(err))
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO statements (statement_id, text, level) VALUES (?, ?, ?)`)
	if err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").With("operation", "prepare").Wrap(storage.Unavailable(err))
	}
	defer stmt.Close()

	for _, st := range statements {
		if _, err = stmt.ExecContext(ctx, string(st.ID), st.Text, st.Level); err != nil {
			if isUniqueViolation(err, "statements.statement_id") {
				return model.ErrDuplicateStatement
			}
			return oops.Code("STATEMENT_REPLACE_FAILED").
				With("operation", "insert").
				With("id", string(st.ID)).
				Wrap(storage.Unavailable(err))
		}
	}

	if err = tx.Commit(); err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").With("operation", "commit").Wrap(storage.Unavailable(err))
	}
	return nil
}

func (s *Storage) CountStatements(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM statements`).Scan(&n); err != nil {
		return 0, oops.Code("STATEMENT_COUNT_FAILED").Wrap(storage.Unavailable(err))
	}
	return n, nil
}
