package redis

import (
	"fmt"

	"github.com/gripp-game/gripp-api/internal/model"
)

// keys builds every Redis key under a common prefix
type keys struct {
	prefix string
}

// account returns the key holding an Account as JSON
func (k keys) account(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", k.prefix, id)
}

// usernameIndex maps a username to its account id
func (k keys) usernameIndex(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", k.prefix, username)
}

// emailIndex maps an email to its account id
func (k keys) emailIndex(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", k.prefix, email)
}

// tokenIndex maps an access token to its account id
func (k keys) tokenIndex(token string) string {
	return fmt.Sprintf("%s:idx:token:%s", k.prefix, token)
}

// statement returns the key holding a Statement as JSON
func (k keys) statement(id model.StatementID) string {
	return fmt.Sprintf("%s:statement:%s", k.prefix, id)
}

// statementOrder is the LIST of statement ids in catalog order
func (k keys) statementOrder() string {
	return fmt.Sprintf("%s:statements", k.prefix)
}

// statementLevel is the LIST of statement ids with the given level, in catalog order
func (k keys) statementLevel(level int) string {
	return fmt.Sprintf("%s:statements:level:%d", k.prefix, level)
}

// statementLevels is the SET of levels that have a level list
func (k keys) statementLevels() string {
	return fmt.Sprintf("%s:statements:levels", k.prefix)
}
