package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/zhouyi/internal/interpret"
	"github.com/pbaille/zhouyi/internal/logging"
	"github.com/pbaille/zhouyi/internal/metrics"
	"github.com/pbaille/zhouyi/internal/oracle"
)

// Hooks are called after a session changes. Hook errors are logged and
// never undo the change.
type Hooks struct {
	// OnResolved runs when the sixth line is recorded.
	OnResolved func(ctx context.Context, rec *Record, result oracle.Result) error
	// OnInterpreted runs after an interpretation is stored.
	OnInterpreted func(ctx context.Context, rec *Record) error
}

// lockEntry holds a session's mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager applies session operations against a Store, serialising all
// mutations of the same session.
type Manager struct {
	store       Store
	tosser      *oracle.Tosser
	interpreter *interpret.Interpreter
	hooks       Hooks
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// Option configures the Manager.
type Option func(*Manager)

// WithTosser sets the coin source for casts.
func WithTosser(t *oracle.Tosser) Option {
	return func(m *Manager) {
		m.tosser = t
	}
}

// WithInterpreter enables Interpret.
func WithInterpreter(i *interpret.Interpreter) Option {
	return func(m *Manager) {
		m.interpreter = i
	}
}

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// WithMetrics records casts and resolutions.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		tosser: oracle.DefaultTosser(),
		logger: logging.NewNop(),
		now:    time.Now,
		locks:  make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates the lock entry for id and takes a reference.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release drops a reference and forgets the entry when unused.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the session's lock.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	entry := m.acquire(id)
	defer m.release(id)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Create starts a new session awaiting its question.
func (m *Manager) Create(ctx context.Context, lang oracle.Language) (*Record, error) {
	now := m.now()
	rec := &Record{
		Session:   oracle.NewSession(uuid.New().String(), lang).Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.logger.Debug("session created", "session", rec.ID(), "lang", lang)
	return rec, nil
}

// Get loads a session.
func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	return m.store.Load(ctx, id)
}

// List returns the IDs of stored sessions.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err != nil {
			return err
		}
		return m.store.Delete(ctx, id)
	})
}

// mutate loads the session, applies fn and saves the result. Nothing is
// saved when fn fails.
func (m *Manager) mutate(ctx context.Context, id string, fn func(rec *Record, s *oracle.Session) error) (*Record, error) {
	var out *Record
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		rec, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		s, err := oracle.RestoreSession(rec.Session)
		if err != nil {
			return fmt.Errorf("load session %s: %w", id, err)
		}
		if err := fn(rec, s); err != nil {
			return err
		}
		rec.Session = s.Snapshot()
		rec.UpdatedAt = m.now()
		if err := m.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("save session %s: %w", id, err)
		}
		out = rec
		return nil
	})
	return out, err
}

// SetLanguage changes the session's language. Any interpretation is kept.
func (m *Manager) SetLanguage(ctx context.Context, id string, lang oracle.Language) (*Record, error) {
	return m.mutate(ctx, id, func(_ *Record, s *oracle.Session) error {
		s.SetLanguage(lang)
		return nil
	})
}

// ConfirmQuestion sets the question and starts casting.
func (m *Manager) ConfirmQuestion(ctx context.Context, id, question string) (*Record, error) {
	return m.mutate(ctx, id, func(rec *Record, s *oracle.Session) error {
		if err := s.ConfirmQuestion(question); err != nil {
			return err
		}
		rec.clearDerived()
		return nil
	})
}

// Cast tosses the next line.
func (m *Manager) Cast(ctx context.Context, id string) (*Record, oracle.Line, error) {
	return m.addLine(ctx, id, func(s *oracle.Session) (oracle.Line, error) {
		return s.Cast(m.tosser)
	})
}

// RecordTotal records a line cast elsewhere, given its total.
func (m *Manager) RecordTotal(ctx context.Context, id string, total int) (*Record, oracle.Line, error) {
	l, err := oracle.LineFromTotal(total)
	if err != nil {
		return nil, oracle.Line{}, err
	}
	return m.addLine(ctx, id, func(s *oracle.Session) (oracle.Line, error) {
		return l, s.RecordLine(l)
	})
}

func (m *Manager) addLine(ctx context.Context, id string, add func(s *oracle.Session) (oracle.Line, error)) (*Record, oracle.Line, error) {
	var (
		line     oracle.Line
		result   oracle.Result
		resolved bool
	)
	rec, err := m.mutate(ctx, id, func(rec *Record, s *oracle.Session) error {
		var err error
		if line, err = add(s); err != nil {
			return err
		}
		if s.Phase() != oracle.Resolved {
			return nil
		}
		// A missing table entry fails this cast but leaves the session loadable.
		if result, err = s.Result(); err != nil {
			return fmt.Errorf("resolve session %s: %w", id, err)
		}
		resolved = true
		rec.ReadingID = uuid.New().String()
		return nil
	})
	if err != nil {
		return nil, oracle.Line{}, err
	}

	m.metrics.LineCast(line.Total)
	m.logger.Debug("line cast", "session", id, "position", len(rec.Session.Lines), "total", line.Total)

	if resolved {
		m.metrics.Resolved(result.Hexagram.Number)
		m.logger.Info("hexagram resolved", "session", id, "hexagram", result.Hexagram.Number, "key", result.Key)
		if m.hooks.OnResolved != nil {
			if err := m.hooks.OnResolved(ctx, rec, result); err != nil {
				m.logger.Warn("resolved hook failed", "session", id, "error", err)
			}
		}
	}
	return rec, line, nil
}

// Reset returns the session to awaiting a question.
func (m *Manager) Reset(ctx context.Context, id string) (*Record, error) {
	return m.mutate(ctx, id, func(rec *Record, s *oracle.Session) error {
		s.Reset()
		rec.clearDerived()
		return nil
	})
}

// Result resolves a completed session without changing it.
func (m *Manager) Result(ctx context.Context, id string) (*Record, oracle.Result, error) {
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, oracle.Result{}, err
	}
	s, err := oracle.RestoreSession(rec.Session)
	if err != nil {
		return nil, oracle.Result{}, fmt.Errorf("load session %s: %w", id, err)
	}
	r, err := s.Result()
	if err != nil {
		return nil, oracle.Result{}, err
	}
	return rec, r, nil
}

// Interpret fetches an interpretation for a resolved session. The
// provider is called without holding the session lock; the result is
// only stored if the session's cast is unchanged when it returns. A
// provider failure is recorded on the session and returned, and leaves
// the question, lines and phase untouched.
func (m *Manager) Interpret(ctx context.Context, id string) (*Record, error) {
	if m.interpreter == nil {
		return nil, fmt.Errorf("interpret session %s: no interpreter configured", id)
	}
	before, result, err := m.Result(ctx, id)
	if err != nil {
		return nil, err
	}

	interp, callErr := m.interpreter.Interpret(ctx, interpret.RequestFromResult(result, before.Session.Language))

	rec, err := m.mutate(ctx, id, func(rec *Record, s *oracle.Session) error {
		if rec.ReadingID != before.ReadingID || !sameCast(before.Session, rec.Session) {
			return ErrSessionChanged
		}
		rec.Provider = m.interpreter.Provider()
		if callErr != nil {
			rec.InterpretationError = callErr.Error()
			return nil
		}
		rec.Interpretation = &interp
		rec.InterpretationError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	if callErr != nil {
		return rec, fmt.Errorf("interpret session %s: %w", id, callErr)
	}

	if m.hooks.OnInterpreted != nil {
		if err := m.hooks.OnInterpreted(ctx, rec); err != nil {
			m.logger.Warn("interpreted hook failed", "session", id, "error", err)
		}
	}
	return rec, nil
}

func sameCast(a, b oracle.Snapshot) bool {
	return a.Phase == b.Phase && a.Question == b.Question && reflect.DeepEqual(a.Lines, b.Lines)
}
