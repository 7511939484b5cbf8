package sessions

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/pbaille/zhouyi/internal/interpret"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	text   string
	err    error
	during func()
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Interpret(context.Context, interpret.Request) (string, error) {
	if p.during != nil {
		p.during()
	}
	return p.text, p.err
}

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithTosser(oracle.NewTosser(rand.NewPCG(9, 9)))}, opts...)
	return NewManager(NewMemoryStore(), opts...)
}

// resolve drives a new session through its question and the given totals.
func resolve(t *testing.T, m *Manager, totals ...int) *Record {
	t.Helper()
	ctx := context.Background()
	rec, err := m.Create(ctx, oracle.English)
	require.NoError(t, err)
	_, err = m.ConfirmQuestion(ctx, rec.ID(), "Should I move?")
	require.NoError(t, err)
	for _, total := range totals {
		rec, _, err = m.RecordTotal(ctx, rec.ID(), total)
		require.NoError(t, err)
	}
	return rec
}

func TestManager_Flow(t *testing.T) {
	ctx := context.Background()
	var resolved []oracle.Result
	m := newManager(t, WithHooks(Hooks{
		OnResolved: func(_ context.Context, rec *Record, r oracle.Result) error {
			assert.NotEmpty(t, rec.ReadingID)
			resolved = append(resolved, r)
			return nil
		},
	}))

	rec, err := m.Create(ctx, oracle.English)
	require.NoError(t, err)
	assert.Equal(t, oracle.AwaitingQuestion, rec.Session.Phase)

	_, err = m.ConfirmQuestion(ctx, rec.ID(), " ")
	assert.ErrorIs(t, err, oracle.ErrEmptyQuestion)
	stored, err := m.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, oracle.AwaitingQuestion, stored.Session.Phase)

	rec, err = m.ConfirmQuestion(ctx, rec.ID(), "Should I move?")
	require.NoError(t, err)
	assert.Equal(t, oracle.Casting, rec.Session.Phase)

	for i := 0; i < 6; i++ {
		var l oracle.Line
		rec, l, err = m.Cast(ctx, rec.ID())
		require.NoError(t, err)
		assert.Equal(t, l, rec.Session.Lines[i])
		if i < 5 {
			assert.Equal(t, oracle.Casting, rec.Session.Phase)
			assert.Empty(t, resolved)
		}
	}
	assert.Equal(t, oracle.Resolved, rec.Session.Phase)
	require.Len(t, resolved, 1)
	assert.Equal(t, "Should I move?", resolved[0].Question)

	_, _, err = m.Cast(ctx, rec.ID())
	assert.ErrorIs(t, err, oracle.ErrSessionComplete)

	_, result, err := m.Result(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, resolved[0], result)

	rec, err = m.Reset(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, oracle.AwaitingQuestion, rec.Session.Phase)
	assert.Empty(t, rec.Session.Lines)
	assert.Empty(t, rec.ReadingID)
}

func TestManager_RecordTotal(t *testing.T) {
	m := newManager(t)
	rec := resolve(t, m, 7, 8, 9, 6, 7, 8)
	assert.Equal(t, oracle.Resolved, rec.Session.Phase)

	_, r, err := m.Result(context.Background(), rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "101010", r.Key)

	_, _, err = m.RecordTotal(context.Background(), rec.ID(), 5)
	assert.ErrorIs(t, err, oracle.ErrInvalidTotal)
}

func TestManager_NotFound(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.ConfirmQuestion(ctx, "nope", "q")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = m.Cast(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "nope"), ErrSessionNotFound)
}

func TestManager_ConcurrentCasts(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	rec, err := m.Create(ctx, oracle.English)
	require.NoError(t, err)
	_, err = m.ConfirmQuestion(ctx, rec.ID(), "q")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := m.Cast(ctx, rec.ID()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, oracle.ErrSessionComplete)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	got, err := m.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Len(t, got.Session.Lines, 6)
	assert.Equal(t, oracle.Resolved, got.Session.Phase)
	assert.Empty(t, m.locks, "lock entries should be released")
}

func TestManager_Interpret(t *testing.T) {
	var interpreted *Record
	stub := &stubProvider{text: "Stay.\n### Summary\nStay put. (2 words)"}
	m := newManager(t,
		WithInterpreter(interpret.NewInterpreter(stub)),
		WithHooks(Hooks{OnInterpreted: func(_ context.Context, rec *Record) error {
			interpreted = rec
			return nil
		}}),
	)
	rec := resolve(t, m, 7, 7, 7, 8, 8, 8)

	rec, err := m.Interpret(context.Background(), rec.ID())
	require.NoError(t, err)
	require.NotNil(t, rec.Interpretation)
	assert.Equal(t, "Stay.", rec.Interpretation.Reading)
	assert.Equal(t, "Stay put.", rec.Interpretation.Summary)
	assert.Equal(t, "stub", rec.Provider)
	require.NotNil(t, interpreted)
	assert.Equal(t, rec.ReadingID, interpreted.ReadingID)
}

func TestManager_InterpretFailureKeepsSession(t *testing.T) {
	stub := &stubProvider{err: &interpret.ProviderError{Provider: "stub", StatusCode: 401, Message: "bad key"}}
	m := newManager(t, WithInterpreter(interpret.NewInterpreter(stub)))
	rec := resolve(t, m, 7, 8, 9, 6, 7, 8)
	before := rec.Session

	got, err := m.Interpret(context.Background(), rec.ID())
	var perr *interpret.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.Auth())
	require.NotNil(t, got)
	assert.Contains(t, got.InterpretationError, "bad key")
	assert.Nil(t, got.Interpretation)

	stored, err := m.Get(context.Background(), rec.ID())
	require.NoError(t, err)
	assert.Equal(t, before, stored.Session)
	assert.Equal(t, oracle.Resolved, stored.Session.Phase)
}

func TestManager_InterpretBeforeResolved(t *testing.T) {
	m := newManager(t, WithInterpreter(interpret.NewInterpreter(&stubProvider{text: "x"})))
	rec := resolve(t, m, 7, 8)

	_, err := m.Interpret(context.Background(), rec.ID())
	assert.ErrorIs(t, err, oracle.ErrNotResolved)
}

func TestManager_InterpretDiscardedAfterReset(t *testing.T) {
	stub := &stubProvider{text: "late answer"}
	m := newManager(t, WithInterpreter(interpret.NewInterpreter(stub)))
	rec := resolve(t, m, 7, 7, 7, 7, 7, 7)

	stub.during = func() {
		_, err := m.Reset(context.Background(), rec.ID())
		require.NoError(t, err)
	}
	_, err := m.Interpret(context.Background(), rec.ID())
	assert.ErrorIs(t, err, ErrSessionChanged)

	stored, err := m.Get(context.Background(), rec.ID())
	require.NoError(t, err)
	assert.Nil(t, stored.Interpretation)
	assert.Equal(t, oracle.AwaitingQuestion, stored.Session.Phase)
}

func TestManager_InterpretWithoutInterpreter(t *testing.T) {
	m := newManager(t)
	rec := resolve(t, m, 7, 7, 7, 7, 7, 7)
	_, err := m.Interpret(context.Background(), rec.ID())
	assert.Error(t, err)
}

func TestManager_HookErrorDoesNotFailCast(t *testing.T) {
	m := newManager(t, WithHooks(Hooks{
		OnResolved: func(context.Context, *Record, oracle.Result) error { return errors.New("disk full") },
	}))
	rec := resolve(t, m, 8, 8, 8, 8, 8, 8)
	assert.Equal(t, oracle.Resolved, rec.Session.Phase)
}

func TestManager_SetLanguageAndList(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	rec, err := m.Create(ctx, oracle.English)
	require.NoError(t, err)

	rec, err = m.SetLanguage(ctx, rec.ID(), oracle.Chinese)
	require.NoError(t, err)
	assert.Equal(t, oracle.Chinese, rec.Session.Language)

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID()}, ids)

	require.NoError(t, m.Delete(ctx, rec.ID()))
	ids, err = m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_WithLockHonoursCancelledContext(t *testing.T) {
	m := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.WithLock(ctx, "x", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
