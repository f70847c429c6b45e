package seed

import (
	"context"
	"io"
	"log/slog"

	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// Seeder writes a catalog into a statement store.
// It must finish before the statement service serves reads.
type Seeder struct {
	store   storage.StatementStore
	catalog []model.Statement
	logger  *slog.Logger
}

// NewSeeder creates a Seeder for the given catalog
func NewSeeder(store storage.StatementStore, catalog []model.Statement, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Seeder{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// Reset clears the store and repopulates it with the catalog as one unit of work
func (s *Seeder) Reset(ctx context.Context) error {
	if err := s.store.ReplaceStatements(ctx, s.catalog); err != nil {
		return oops.Code("SEED_RESET_FAILED").With("statements", len(s.catalog)).Wrap(err)
	}
	s.logger.Info("statement catalog reset", "statements", len(s.catalog))
	return nil
}

// EnsureSeeded seeds the catalog only when the store holds no statements.
// Reports whether seeding happened.
func (s *Seeder) EnsureSeeded(ctx context.Context) (bool, error) {
	n, err := s.store.CountStatements(ctx)
	if err != nil {
		return false, oops.Code("SEED_COUNT_FAILED").Wrap(err)
	}
	if n > 0 {
		s.logger.Debug("statement catalog already present", "statements", n)
		return false, nil
	}
	if err := s.Reset(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Run resets the catalog when reset is set, otherwise seeds an empty store
func (s *Seeder) Run(ctx context.Context, reset bool) error {
	if reset {
		return s.Reset(ctx)
	}
	_, err := s.EnsureSeeded(ctx)
	return err
}
