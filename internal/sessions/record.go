package sessions

import (
	"errors"
	"time"

	"github.com/pbaille/zhouyi/internal/oracle"
)

var (
	// ErrSessionNotFound is returned when a session ID is not in the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionChanged is returned when a session was reset or recast
	// while its interpretation was being fetched.
	ErrSessionChanged = errors.New("session changed during interpretation")
)

// Record is a stored session plus the data derived from it.
type Record struct {
	Session oracle.Snapshot `json:"session"`

	// ReadingID identifies the history entry for the current resolved cast.
	ReadingID string `json:"reading_id,omitempty"`

	Interpretation      *oracle.Interpretation `json:"interpretation,omitempty"`
	InterpretationError string                 `json:"interpretation_error,omitempty"`
	Provider            string                 `json:"provider,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ID returns the session ID.
func (r *Record) ID() string { return r.Session.ID }

// clearDerived drops everything computed from the current cast.
func (r *Record) clearDerived() {
	r.ReadingID = ""
	r.Interpretation = nil
	r.InterpretationError = ""
	r.Provider = ""
}
