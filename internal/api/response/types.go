package response

import (
	"time"

	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/services/auth"
)

// Account is returned by register and login. It is the only place the access token appears.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AccessToken string    `json:"accessToken"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AccountFromView converts an auth.AccountView
func AccountFromView(v *auth.AccountView) Account {
	return Account{
		ID:          string(v.ID),
		Username:    v.Username,
		Email:       v.Email,
		AccessToken: v.AccessToken,
		CreatedAt:   v.CreatedAt,
	}
}

// Profile is the public view of an account
type Profile struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileFromView converts an auth.ProfileView
func ProfileFromView(v *auth.ProfileView) Profile {
	return Profile{
		Username:  v.Username,
		CreatedAt: v.CreatedAt,
	}
}

// Statement uses the same field names as the catalog file
type Statement struct {
	StatementID string `json:"statementId"`
	Statement   string `json:"statement"`
	Level       int    `json:"level"`
}

// StatementFromModel converts a model.Statement
func StatementFromModel(s model.Statement) Statement {
	return Statement{
		StatementID: string(s.ID),
		Statement:   s.Text,
		Level:       s.Level,
	}
}

// StatementList holds a list of statements
type StatementList struct {
	Statements []Statement `json:"statements"`
}

// StatementListFromModel converts a slice, keeping an empty slice non-nil
func StatementListFromModel(statements []model.Statement) StatementList {
	list := make([]Statement, len(statements))
	for i, s := range statements {
		list[i] = StatementFromModel(s)
	}
	return StatementList{Statements: list}
}

// TextList holds statement texts only
type TextList struct {
	Texts []string `json:"texts"`
}

// IDList holds statement ids only
type IDList struct {
	StatementIDs []string `json:"statementIds"`
}

// IDListFromModel converts statement ids
func IDListFromModel(ids []model.StatementID) IDList {
	list := make([]string, len(ids))
	for i, id := range ids {
		list[i] = string(id)
	}
	return IDList{StatementIDs: list}
}

// RandomStatement is the payload of GET /random
type RandomStatement struct {
	Text      string    `json:"text"`
	Statement Statement `json:"statement"`
}

// SingleStatement wraps one statement
type SingleStatement struct {
	Statement Statement `json:"statement"`
}

// Health reports service status
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Route documents one endpoint
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Help is the payload of GET /
type Help struct {
	Name   string  `json:"name"`
	Routes []Route `json:"routes"`
}
