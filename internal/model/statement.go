package model

// StatementID is the stable catalog identifier of a statement
type StatementID string

// Statement is a prompt shown to players
type Statement struct {
	ID    StatementID
	Text  string
	Level int // difficulty tier, 1 is the mildest
}

// StatementTexts returns the text of each statement, preserving order
func StatementTexts(statements []Statement) []string {
	texts := make([]string, len(statements))
	for i, s := range statements {
		texts[i] = s.Text
	}
	return texts
}
