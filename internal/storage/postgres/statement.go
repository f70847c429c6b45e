package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

func (s *Storage) ListStatements(ctx context.Context) ([]model.Statement, error) {
	rows, err := s.pool.Query(ctx, `SELECT statement_id, text, level FROM statements ORDER BY seq`)
	if err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").Wrap(storage.Unavailable(err))
	}
	return collectStatements(rows)
}

func (s *Storage) ListStatementsByLevel(ctx context.Context, level int) ([]model.Statement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT statement_id, text, level FROM statements WHERE level = $1 ORDER BY seq`, level)
	if err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").With("level", level).Wrap(storage.Unavailable(err))
	}
	return collectStatements(rows)
}

func collectStatements(rows pgx.Rows) ([]model.Statement, error) {
	defer rows.Close()

	statements := []model.Statement{}
	for rows.Next() {
		var st model.Statement
		var id string
		if err := rows.Scan(&id, &st.Text, &st.Level); err != nil {
			return nil, oops.Code("STATEMENT_LIST_FAILED").With("operation", "scan statement row").Wrap(err)
		}
		st.ID = model.StatementID(id)
		statements = append(statements, st)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").With("operation", "iterate statements").Wrap(storage.Unavailable(err))
	}
	return statements, nil
}

func (s *Storage) GetStatement(ctx context.Context, id model.StatementID) (*model.Statement, error) {
	var st model.Statement
	var sid string
	err := s.pool.QueryRow(ctx,
		`SELECT statement_id, text, level FROM statements WHERE statement_id = $1`, string(id)).
		Scan(&sid, &st.Text, &st.Level)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrStatementNotFound
	}
	if err != nil {
		return nil, oops.Code("STATEMENT_GET_FAILED").With("id", string(id)).Wrap(storage.Unavailable(err))
	}
	st.ID = model.StatementID(sid)
	return &st, nil
}

// ReplaceStatements clears and repopulates the catalog inside one transaction
func (s *Storage) ReplaceStatements(ctx context.Context, statements []model.Statement) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").With("operation", "begin").Wrap(storage.Unavailable(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM statements`); err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").With("operation", "clear").Wrap(storage.Unavailable(err))
	}

	for _, st := range statements {
		_, err = tx.Exec(ctx,
			`INSERT INTO statements (statement_id, text, level) VALUES ($1, $2, $3)`,
			string(st.ID), st.Text, st.Level)
		if err != nil {
			if uniqueViolation(err) == constraintStatementID {
				return model.ErrDuplicateStatement
			}
			return oops.Code("STATEMENT_REPLACE_FAILED").
				With("operation", "insert").
				With("id", string(st.ID)).
				Wrap(storage.Unavailable(err))
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").With("operation", "commit").Wrap(storage.Unavailable(err))
	}
	return nil
}

func (s *Storage) CountStatements(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM statements`).Scan(&n); err != nil {
		return 0, oops.Code("STATEMENT_COUNT_FAILED").Wrap(storage.Unavailable(err))
	}
	return n, nil
}
