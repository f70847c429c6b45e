package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case Profile:
		o.printProfile(v)
	case StatementList:
		o.printStatements(v.Statements)
	case SingleStatement:
		o.printStatements([]Statement{v.Statement})
	case RandomStatement:
		o.printStatements([]Statement{v.Statement})
	case TextList:
		for _, text := range v.Texts {
			_, _ = fmt.Fprintln(o.w, text)
		}
	case IDList:
		for _, id := range v.StatementIDs {
			_, _ = fmt.Fprintln(o.w, id)
		}
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AccessToken string    `json:"accessToken"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Profile response type
type Profile struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Statement response type
type Statement struct {
	StatementID string `json:"statementId"`
	Statement   string `json:"statement"`
	Level       int    `json:"level"`
}

// StatementList response type
type StatementList struct {
	Statements []Statement `json:"statements"`
}

// TextList response type
type TextList struct {
	Texts []string `json:"texts"`
}

// IDList response type
type IDList struct {
	StatementIDs []string `json:"statementIds"`
}

// RandomStatement response type
type RandomStatement struct {
	Text      string    `json:"text"`
	Statement Statement `json:"statement"`
}

// SingleStatement response type
type SingleStatement struct {
	Statement Statement `json:"statement"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printAccount(a Account) {
	_, _ = fmt.Fprintf(o.w, "Account: %s (%s)\n", a.Username, a.ID)
	if a.Email != "" {
		_, _ = fmt.Fprintf(o.w, "Email: %s\n", a.Email)
	}
	_, _ = fmt.Fprintf(o.w, "Created: %s\n", a.CreatedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(o.w, "Token: %s\n", a.AccessToken)
}

func (o *Output) printProfile(p Profile) {
	_, _ = fmt.Fprintf(o.w, "Username: %s\n", p.Username)
	_, _ = fmt.Fprintf(o.w, "Created: %s\n", p.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printStatements(statements []Statement) {
	if len(statements) == 0 {
		_, _ = fmt.Fprintln(o.w, "No statements")
		return
	}
	for _, s := range statements {
		_, _ = fmt.Fprintf(o.w, "[%d] %s  %s\n", s.Level, s.StatementID, s.Statement)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		_, _ = fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}
