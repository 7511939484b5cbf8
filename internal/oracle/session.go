package oracle

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// LinesPerHexagram is the number of casts in a complete session.
const LinesPerHexagram = 6

// Phase is the step a divination session is in.
type Phase string

const (
	AwaitingQuestion Phase = "awaiting_question"
	Casting          Phase = "casting"
	Resolved         Phase = "resolved"
)

// Session drives one divination: question, six casts, result.
// Mutations are serialised; a second cast while one is pending fails
// with ErrCastInFlight instead of queueing.
type Session struct {
	mu       sync.Mutex
	inFlight atomic.Bool

	id       string
	language Language
	question string
	lines    []Line
	phase    Phase
}

// NewSession starts a session awaiting its question.
func NewSession(id string, lang Language) *Session {
	return &Session{id: id, language: lang, phase: AwaitingQuestion}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Language() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage changes the display and interpretation language.
func (s *Session) SetLanguage(lang Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Question() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

// Lines returns a copy of the lines cast so far, bottom first.
func (s *Session) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// ConfirmQuestion stores q and moves the session to Casting.
func (s *Session) ConfirmQuestion(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return ErrEmptyQuestion
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != AwaitingQuestion {
		return fmt.Errorf("confirm question in %s: %w", s.phase, ErrWrongPhase)
	}
	s.question = q
	s.lines = nil
	s.phase = Casting
	return nil
}

// RecordLine appends a line cast elsewhere. The sixth line resolves the session.
func (s *Session) RecordLine(l Line) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrCastInFlight
	}
	defer s.inFlight.Store(false)
	return s.record(l)
}

// Cast tosses one line with t and records it.
func (s *Session) Cast(t *Tosser) (Line, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Line{}, ErrCastInFlight
	}
	defer s.inFlight.Store(false)

	if err := s.canRecord(); err != nil {
		return Line{}, err
	}
	l := t.TossLine()
	if err := s.record(l); err != nil {
		return Line{}, err
	}
	return l, nil
}

func (s *Session) canRecord() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRecordLocked()
}

func (s *Session) canRecordLocked() error {
	switch {
	case s.phase == AwaitingQuestion:
		return fmt.Errorf("record line: %w", ErrWrongPhase)
	case s.phase == Resolved, len(s.lines) >= LinesPerHexagram:
		return ErrSessionComplete
	}
	return nil
}

func (s *Session) record(l Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canRecordLocked(); err != nil {
		return err
	}
	s.lines = append(s.lines, l)
	if len(s.lines) == LinesPerHexagram {
		s.phase = Resolved
	}
	return nil
}

// Reset clears the question and lines and returns to AwaitingQuestion.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = ""
	s.lines = nil
	s.phase = AwaitingQuestion
}

// Result resolves the completed cast. It has no side effects.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	question, lines := s.question, append([]Line(nil), s.lines...)
	s.mu.Unlock()

	r, err := Resolve(lines)
	if err != nil {
		return Result{}, err
	}
	r.Question = question
	return r, nil
}

// Result is a resolved cast.
type Result struct {
	Question    string    `json:"question,omitempty"`
	Lines       []Line    `json:"lines"`
	Key         string    `json:"key"`
	Hexagram    Hexagram  `json:"hexagram"`
	Lower       Trigram   `json:"lower"`
	Upper       Trigram   `json:"upper"`
	Changing    []int     `json:"changing,omitempty"`
	Relating    *Hexagram `json:"relating,omitempty"`
	RelatingKey string    `json:"relating_key,omitempty"`
}

// Resolve computes the result for six lines. A key missing from the
// table is reported as ErrUnknownKey rather than treated as absent.
func Resolve(lines []Line) (Result, error) {
	if len(lines) != LinesPerHexagram {
		return Result{}, fmt.Errorf("resolve %d lines: %w", len(lines), ErrNotResolved)
	}
	key := BinaryKey(lines)
	h, err := LookupHexagram(key)
	if err != nil {
		return Result{}, err
	}
	lower, _ := LowerTrigram(lines)
	upper, _ := UpperTrigram(lines)

	r := Result{
		Lines:    append([]Line(nil), lines...),
		Key:      key,
		Hexagram: h,
		Lower:    lower,
		Upper:    upper,
		Changing: ChangingPositions(lines),
	}
	if len(r.Changing) > 0 {
		r.RelatingKey = ChangedKey(lines)
		rel, err := LookupHexagram(r.RelatingKey)
		if err != nil {
			return Result{}, err
		}
		r.Relating = &rel
	}
	return r, nil
}

// Snapshot is the serialisable state of a session.
type Snapshot struct {
	ID       string   `json:"id"`
	Language Language `json:"language"`
	Question string   `json:"question,omitempty"`
	Lines    []Line   `json:"lines,omitempty"`
	Phase    Phase    `json:"phase"`
}

// Snapshot captures the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:       s.id,
		Language: s.language,
		Question: s.question,
		Lines:    append([]Line(nil), s.lines...),
		Phase:    s.phase,
	}
}

// RestoreSession rebuilds a session from a snapshot, rejecting any
// snapshot whose phase, question and lines disagree.
func RestoreSession(snap Snapshot) (*Session, error) {
	for i, l := range snap.Lines {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("restore line %d: %w", i+1, err)
		}
	}
	n := len(snap.Lines)
	hasQuestion := strings.TrimSpace(snap.Question) != ""
	var ok bool
	switch snap.Phase {
	case AwaitingQuestion:
		ok = !hasQuestion && n == 0
	case Casting:
		ok = hasQuestion && n < LinesPerHexagram
	case Resolved:
		ok = hasQuestion && n == LinesPerHexagram
	}
	if !ok {
		return nil, fmt.Errorf("restore session %s: %d lines in phase %q: %w", snap.ID, n, snap.Phase, ErrWrongPhase)
	}
	return &Session{
		id:       snap.ID,
		language: snap.Language,
		question: snap.Question,
		lines:    append([]Line(nil), snap.Lines...),
		phase:    snap.Phase,
	}, nil
}
