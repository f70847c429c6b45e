// Package seed loads the statement catalog and writes it to a statement store.
package seed

import (
	_ "embed"
	"encoding/json"
	"os"
	"strings"

	"github.com/samber/oops"

	"github.com/gripp-game/gripp-api/internal/model"
)

//go:embed statements.json
var defaultCatalog []byte

// entry is one record of a catalog file
type entry struct {
	StatementID string `json:"statementId"`
	Statement   string `json:"statement"`
	Level       int    `json:"level"`
}

// DefaultCatalog returns the catalog compiled into the binary
func DefaultCatalog() ([]model.Statement, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads and validates a catalog from a JSON file
func LoadFile(path string) ([]model.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	statements, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return statements, nil
}

// Load returns the catalog at path, or the default catalog when path is empty
func Load(path string) ([]model.Statement, error) {
	if path == "" {
		return DefaultCatalog()
	}
	return LoadFile(path)
}

// Parse decodes a JSON catalog and validates every entry.
// Ids and texts must be non-empty, levels positive and ids unique.
func Parse(data []byte) ([]model.Statement, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, oops.Code("SEED_INVALID_JSON").Wrap(err)
	}

	seen := make(map[string]struct{}, len(entries))
	statements := make([]model.Statement, 0, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.StatementID)
		text := strings.TrimSpace(e.Statement)

		switch {
		case id == "":
			return nil, oops.Code("SEED_INVALID_ENTRY").With("index", i).Errorf("statementId is empty")
		case text == "":
			return nil, oops.Code("SEED_INVALID_ENTRY").With("index", i).With("statement_id", id).Errorf("statement is empty")
		case e.Level < 1:
			return nil, oops.Code("SEED_INVALID_ENTRY").With("index", i).With("statement_id", id).Errorf("level %d is not positive", e.Level)
		}

		if _, dup := seen[id]; dup {
			return nil, oops.Code("SEED_DUPLICATE_ID").With("index", i).With("statement_id", id).Wrap(model.ErrDuplicateStatement)
		}
		seen[id] = struct{}{}

		statements = append(statements, model.Statement{
			ID:    model.StatementID(id),
			Text:  text,
			Level: e.Level,
		})
	}
	return statements, nil
}
