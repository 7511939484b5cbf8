package domain

import (
	"time"

	"github.com/pbaille/zhouyi/internal/oracle"
)

// Reading is a resolved cast kept in the history
type Reading struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id,omitempty"`
	Question  string          `json:"question"`
	Language  oracle.Language `json:"language"`
	Lines     []oracle.Line   `json:"lines"`
	Key       string          `json:"key"`
	Hexagram  int             `json:"hexagram"`
	Relating  *int            `json:"relating,omitempty"`
	Reading   string          `json:"reading,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Provider  string          `json:"provider,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Interpreted reports whether the reading has interpretation text
func (r *Reading) Interpreted() bool {
	return r.Reading != "" || r.Summary != ""
}

// ReadingFromResult builds a history entry for a resolved cast
func ReadingFromResult(id, sessionID string, lang oracle.Language, r oracle.Result) *Reading {
	reading := &Reading{
		ID:        id,
		SessionID: sessionID,
		Question:  r.Question,
		Language:  lang,
		Lines:     append([]oracle.Line(nil), r.Lines...),
		Key:       r.Key,
		Hexagram:  r.Hexagram.Number,
	}
	if r.Relating != nil {
		n := r.Relating.Number
		reading.Relating = &n
	}
	return reading
}
