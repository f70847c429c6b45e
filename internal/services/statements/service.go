package statements

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/gripp-game/gripp-api/internal/dependencies/random"
	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// Service answers read queries over the statement catalog
type Service struct {
	store  storage.StatementStore
	random random.Random
	logger *slog.Logger
}

// New creates a new statement Service
func New(store storage.StatementStore, rnd random.Random, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:  store,
		random: rnd,
		logger: logger,
	}
}

// ListAll returns every statement in a fresh random order
func (s *Service) ListAll(ctx context.Context) ([]model.Statement, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.random.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	return all, nil
}

// PickRandom returns one statement chosen uniformly from the current catalog
func (s *Service) PickRandom(ctx context.Context) (*model.Statement, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	picked := all[s.random.Intn(len(all))]
	return &picked, nil
}

// ListTexts returns the text of every statement, in the same random order as ListAll
func (s *Service) ListTexts(ctx context.Context) ([]string, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return model.StatementTexts(all), nil
}

// ListIDs returns every statement id in catalog order
func (s *Service) ListIDs(ctx context.Context) ([]model.StatementID, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]model.StatementID, len(all))
	for i, st := range all {
		ids[i] = st.ID
	}
	return ids, nil
}

// ListByLevel returns statements whose level equals the parsed raw value.
// A level with no statements yields an empty, non-nil slice.
func (s *Service) ListByLevel(ctx context.Context, raw string) ([]model.Statement, error) {
	level, err := ParseLevel(raw)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.ListStatementsByLevel(ctx, level)
	if err != nil {
		s.logger.Error("failed to list statements by level", "level", level, "error", err)
		return nil, storeUnavailable(err)
	}
	if matches == nil {
		matches = []model.Statement{}
	}
	return matches, nil
}

// Get returns the statement with the given id
func (s *Service) Get(ctx context.Context, id model.StatementID) (*model.Statement, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	st, err := s.store.GetStatement(ctx, id)
	if errors.Is(err, model.ErrStatementNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to get statement", "statement_id", id, "error", err)
		return nil, storeUnavailable(err)
	}
	return st, nil
}

// ListSortedByLevel returns all statements ordered by ascending level.
// Statements of equal level keep their catalog order.
func (s *Service) ListSortedByLevel(ctx context.Context) ([]model.Statement, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b model.Statement) int {
		return cmp.Compare(a.Level, b.Level)
	})
	return all, nil
}

// ParseLevel converts a raw level to an int, rejecting non-numeric or non-positive input
func ParseLevel(raw string) (int, error) {
	level, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || level < 1 {
		return 0, invalidLevel(raw)
	}
	return level, nil
}

func (s *Service) load(ctx context.Context) ([]model.Statement, error) {
	all, err := s.store.ListStatements(ctx)
	if err != nil {
		s.logger.Error("failed to list statements", "error", err)
		return nil, storeUnavailable(err)
	}
	if all == nil {
		all = []model.Statement{}
	}
	return all, nil
}
