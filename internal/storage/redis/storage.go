package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// createAccountScript checks every unique index and writes the account in one
// atomic step. KEYS: account, username idx, token idx, email idx.
// ARGV: account JSON, account id, "1" if the email index applies.
// Returns 0 on success, 1 username taken, 2 email taken, 3 token taken.
var createAccountScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then return 1 end
if ARGV[3] == '1' and redis.call('EXISTS', KEYS[4]) == 1 then return 2 end
if redis.call('EXISTS', KEYS[3]) == 1 then return 3 end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
redis.call('SET', KEYS[3], ARGV[2])
if ARGV[3] == '1' then redis.call('SET', KEYS[4], ARGV[2]) end
return 0
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Wrap(err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(storage.Unavailable(err))
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping verifies the Redis server answers
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return oops.Code("REDIS_PING_FAILED").Wrap(storage.Unavailable(err))
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").With("operation", "marshal account").Wrap(err)
	}

	hasEmail := "0"
	if account.Email != "" {
		hasEmail = "1"
	}

	accountKeys := []string{
		s.keys.account(account.ID),
		s.keys.usernameIndex(account.Username),
		s.keys.tokenIndex(account.AccessToken),
		s.keys.emailIndex(account.Email),
	}

	result, err := createAccountScript.Run(ctx, s.client, accountKeys, data, string(account.ID), hasEmail).Int()
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("username", account.Username).
			Wrap(storage.Unavailable(err))
	}

	switch result {
	case 0:
		return nil
	case 1:
		return model.ErrUsernameTaken
	case 2:
		return model.ErrEmailTaken
	case 3:
		return model.ErrTokenTaken
	default:
		return oops.Code("ACCOUNT_CREATE_FAILED").Errorf("unexpected script result %d", result)
	}
}

func (s *Storage) GetAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	data, err := s.client.Get(ctx, s.keys.account(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").With("id", string(id)).Wrap(storage.Unavailable(err))
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, oops.Code("ACCOUNT_DECODE_FAILED").With("id", string(id)).Wrap(err)
	}
	return &account, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.getAccountByIndex(ctx, s.keys.usernameIndex(username))
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	if email == "" {
		return nil, model.ErrAccountNotFound
	}
	return s.getAccountByIndex(ctx, s.keys.emailIndex(email))
}

func (s *Storage) GetAccountByToken(ctx context.Context, token string) (*model.Account, error) {
	return s.getAccountByIndex(ctx, s.keys.tokenIndex(token))
}

// getAccountByIndex resolves an index key to an account id, then loads the account
func (s *Storage) getAccountByIndex(ctx context.Context, indexKey string) (*model.Account, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").Wrap(storage.Unavailable(err))
	}

	return s.GetAccountByID(ctx, model.AccountID(id))
}

// Statement operations

func (s *Storage) ListStatements(ctx context.Context) ([]model.Statement, error) {
	return s.statementsFromList(ctx, s.keys.statementOrder())
}

func (s *Storage) ListStatementsByLevel(ctx context.Context, level int) ([]model.Statement, error) {
	return s.statementsFromList(ctx, s.keys.statementLevel(level))
}

// statementsFromList loads every statement whose id appears in the given LIST
func (s *Storage) statementsFromList(ctx context.Context, listKey string) ([]model.Statement, error) {
	ids, err := s.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").Wrap(storage.Unavailable(err))
	}

	if len(ids) == 0 {
		return []model.Statement{}, nil
	}

	statementKeys := make([]string, len(ids))
	for i, id := range ids {
		statementKeys[i] = s.keys.statement(model.StatementID(id))
	}

	values, err := s.client.MGet(ctx, statementKeys...).Result()
	if err != nil {
		return nil, oops.Code("STATEMENT_LIST_FAILED").Wrap(storage.Unavailable(err))
	}

	statements := make([]model.Statement, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Index entry without a value
		}
		var st model.Statement
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, oops.Code("STATEMENT_DECODE_FAILED").With("id", ids[i]).Wrap(err)
		}
		statements = append(statements, st)
	}

	return statements, nil
}

func (s *Storage) GetStatement(ctx context.Context, id model.StatementID) (*model.Statement, error) {
	data, err := s.client.Get(ctx, s.keys.statement(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrStatementNotFound
		}
		return nil, oops.Code("STATEMENT_GET_FAILED").With("id", string(id)).Wrap(storage.Unavailable(err))
	}

	var st model.Statement
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, oops.Code("STATEMENT_DECODE_FAILED").With("id", string(id)).Wrap(err)
	}
	return &st, nil
}

func (s *Storage) ReplaceStatements(ctx context.Context, statements []model.Statement) error {
	encoded := make([][]byte, len(statements))
	seen := make(map[model.StatementID]struct{}, len(statements))
	for i, st := range statements {
		if _, ok := seen[st.ID]; ok {
			return model.ErrDuplicateStatement
		}
		seen[st.ID] = struct{}{}

		data, err := json.Marshal(st)
		if err != nil {
			return oops.Code("STATEMENT_REPLACE_FAILED").With("id", string(st.ID)).Wrap(err)
		}
		encoded[i] = data
	}

	// Collect what the current catalog occupies so it can be removed
	oldIDs, err := s.client.LRange(ctx, s.keys.statementOrder(), 0, -1).Result()
	if err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").Wrap(storage.Unavailable(err))
	}
	oldLevels, err := s.client.SMembers(ctx, s.keys.statementLevels()).Result()
	if err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").Wrap(storage.Unavailable(err))
	}

	// Clear and repopulate in one MULTI/EXEC transaction
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range oldIDs {
			pipe.Del(ctx, s.keys.statement(model.StatementID(id)))
		}
		for _, raw := range oldLevels {
			level, convErr := strconv.Atoi(raw)
			if convErr != nil {
				continue
			}
			pipe.Del(ctx, s.keys.statementLevel(level))
		}
		pipe.Del(ctx, s.keys.statementLevels(), s.keys.statementOrder())

		for i, st := range statements {
			pipe.Set(ctx, s.keys.statement(st.ID), encoded[i], 0)
			pipe.RPush(ctx, s.keys.statementOrder(), string(st.ID))
			pipe.RPush(ctx, s.keys.statementLevel(st.Level), string(st.ID))
			pipe.SAdd(ctx, s.keys.statementLevels(), strconv.Itoa(st.Level))
		}
		return nil
	})
	if err != nil {
		return oops.Code("STATEMENT_REPLACE_FAILED").
			With("count", len(statements)).
			Wrap(storage.Unavailable(err))
	}
	return nil
}

func (s *Storage) CountStatements(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.keys.statementOrder()).Result()
	if err != nil {
		return 0, oops.Code("STATEMENT_COUNT_FAILED").Wrap(storage.Unavailable(err))
	}
	return int(n), nil
}
