package statements

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/gripp-game/gripp-api/internal/dependencies/mocks"
	"github.com/gripp-game/gripp-api/internal/dependencies/random"
	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
	"github.com/gripp-game/gripp-api/internal/storage/memory"
	"github.com/gripp-game/gripp-api/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seed(statements ...model.Statement) {
	s.Require().NoError(s.storage.ReplaceStatements(s.ctx, statements))
}

func (s *ServiceSuite) seedCatalog() {
	s.seed(
		model.Statement{ID: "s1", Text: "has climbed a mountain", Level: 3},
		model.Statement{ID: "s2", Text: "has been to Paris", Level: 1},
		model.Statement{ID: "s3", Text: "can juggle", Level: 2},
		model.Statement{ID: "s4", Text: "owns a cat", Level: 1},
	)
}

func ids(statements []model.Statement) []model.StatementID {
	result := make([]model.StatementID, len(statements))
	for i, st := range statements {
		result[i] = st.ID
	}
	return result
}

// ListAll tests

func (s *ServiceSuite) TestListAllShufflesWithInjectedRandom() {
	s.seedCatalog()
	s.random.QueueSwaps([2]int{0, 3}, [2]int{1, 2})

	all, err := s.service.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.StatementID{"s4", "s3", "s2", "s1"}, ids(all))
	s.Equal(1, s.random.ShuffleCalls())
}

func (s *ServiceSuite) TestListAllDoesNotReorderStore() {
	s.seedCatalog()
	s.random.QueueSwaps([2]int{0, 3})

	_, err := s.service.ListAll(s.ctx)
	s.Require().NoError(err)

	stored, err := s.storage.ListStatements(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.StatementID{"s1", "s2", "s3", "s4"}, ids(stored))
}

func (s *ServiceSuite) TestListAllKeepsSameSetWithRealRandom() {
	s.seedCatalog()
	s.service = New(s.storage, random.New(), nil)

	for range 20 {
		all, err := s.service.ListAll(s.ctx)
		s.Require().NoError(err)
		s.ElementsMatch([]model.StatementID{"s1", "s2", "s3", "s4"}, ids(all))
	}
}

func (s *ServiceSuite) TestListAllEmpty() {
	all, err := s.service.ListAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)
}

// PickRandom tests

func (s *ServiceSuite) TestPickRandomUsesLiveSize() {
	s.seedCatalog()
	rec := &boundRecorder{}
	s.service = New(s.storage, rec, nil)

	picked, err := s.service.PickRandom(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int{4}, rec.bounds)
	s.Equal(model.StatementID("s4"), picked.ID)

	s.seed(model.Statement{ID: "only", Text: "is the only one", Level: 1})
	picked, err = s.service.PickRandom(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int{4, 1}, rec.bounds)
	s.Equal(model.StatementID("only"), picked.ID)
}

func (s *ServiceSuite) TestPickRandomQueuedIndex() {
	s.seedCatalog()
	s.random.QueueIntn(2)

	picked, err := s.service.PickRandom(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.StatementID("s3"), picked.ID)
}

func (s *ServiceSuite) TestPickRandomStaysInRange() {
	s.seedCatalog()
	s.service = New(s.storage, random.New(), nil)

	for range 50 {
		picked, err := s.service.PickRandom(s.ctx)
		s.Require().NoError(err)
		s.Contains([]model.StatementID{"s1", "s2", "s3", "s4"}, picked.ID)
	}
}

func (s *ServiceSuite) TestPickRandomEmptyIsNotFound() {
	picked, err := s.service.PickRandom(s.ctx)
	s.ErrorIs(err, ErrNotFound)
	s.Nil(picked)
}

// ListTexts / ListIDs tests

func (s *ServiceSuite) TestListTextsFollowsShuffle() {
	s.seedCatalog()
	s.random.QueueSwaps([2]int{0, 1})

	texts, err := s.service.ListTexts(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"has been to Paris", "has climbed a mountain", "can juggle", "owns a cat"}, texts)
}

func (s *ServiceSuite) TestListIDs() {
	s.seedCatalog()

	got, err := s.service.ListIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.StatementID{"s1", "s2", "s3", "s4"}, got)
}

// ListByLevel tests

func (s *ServiceSuite) TestListByLevel() {
	s.seedCatalog()

	got, err := s.service.ListByLevel(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal([]model.StatementID{"s2", "s4"}, ids(got))
}

func (s *ServiceSuite) TestListByLevelNoMatchIsEmptyNotNil() {
	s.seedCatalog()

	got, err := s.service.ListByLevel(s.ctx, "7")
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *ServiceSuite) TestListByLevelRejectsInvalidInput() {
	for _, raw := range []string{"", "abc", "0", "-1", "1.5", "2x"} {
		_, err := s.service.ListByLevel(s.ctx, raw)
		s.ErrorIs(err, ErrInvalidLevel, "input %q", raw)
	}
}

// Get tests

func (s *ServiceSuite) TestGetRoundTrip() {
	s.seedCatalog()

	for _, id := range []model.StatementID{"s1", "s2", "s3", "s4"} {
		st, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(id, st.ID)
	}
}

func (s *ServiceSuite) TestGetMissing() {
	s.seedCatalog()

	_, err := s.service.Get(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)

	_, err = s.service.Get(s.ctx, "")
	s.ErrorIs(err, ErrNotFound)
}

// ListSortedByLevel tests

func (s *ServiceSuite) TestListSortedByLevelIsStable() {
	s.seedCatalog()

	got, err := s.service.ListSortedByLevel(s.ctx)
	s.Require().NoError(err)

	levels := make([]int, len(got))
	for i, st := range got {
		levels[i] = st.Level
	}
	s.Equal([]int{1, 1, 2, 3}, levels)
	s.Equal([]model.StatementID{"s2", "s4", "s3", "s1"}, ids(got))
}

// Store failures

func (s *ServiceSuite) TestStoreFailureIsUnavailable() {
	s.service = New(brokenStore{s.storage}, s.random, testutil.NopLogger())

	_, err := s.service.ListAll(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)
	s.ErrorIs(err, storage.ErrUnavailable)

	_, err = s.service.PickRandom(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)

	_, err = s.service.ListByLevel(s.ctx, "1")
	s.ErrorIs(err, ErrStoreUnavailable)

	_, err = s.service.Get(s.ctx, "s1")
	s.ErrorIs(err, ErrStoreUnavailable)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, 2, level)

	_, err = ParseLevel("0")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

// boundRecorder records every Intn bound and picks the last index
type boundRecorder struct {
	random.CryptoRandom
	bounds []int
}

func (b *boundRecorder) Intn(n int) int {
	b.bounds = append(b.bounds, n)
	return n - 1
}

type brokenStore struct {
	*memory.Storage
}

func (brokenStore) err() error {
	return storage.Unavailable(errors.New("i/o timeout"))
}

func (b brokenStore) ListStatements(context.Context) ([]model.Statement, error) {
	return nil, b.err()
}

func (b brokenStore) ListStatementsByLevel(context.Context, int) ([]model.Statement, error) {
	return nil, b.err()
}

func (b brokenStore) GetStatement(context.Context, model.StatementID) (*model.Statement, error) {
	return nil, b.err()
}
