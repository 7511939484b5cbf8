package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pbaille/zhouyi/internal/domain"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "zhouyi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func resolved(t *testing.T, question string, totals ...int) oracle.Result {
	t.Helper()
	var lines []oracle.Line
	for _, total := range totals {
		l, err := oracle.LineFromTotal(total)
		require.NoError(t, err)
		lines = append(lines, l)
	}
	r, err := oracle.Resolve(lines)
	require.NoError(t, err)
	r.Question = question
	return r
}

func TestSaveAndGetReading(t *testing.T) {
	s := newStore(t)
	r := domain.ReadingFromResult("", "sess-1", oracle.English, resolved(t, "Should I move?", 7, 8, 9, 6, 7, 8))

	require.NoError(t, s.SaveReading(r))
	require.NotEmpty(t, r.ID)
	require.False(t, r.CreatedAt.IsZero())

	got, err := s.GetReading(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Should I move?", got.Question)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, oracle.English, got.Language)
	assert.Equal(t, "101010", got.Key)
	assert.Equal(t, 63, got.Hexagram)
	require.NotNil(t, got.Relating)
	assert.Equal(t, 17, *got.Relating)
	assert.Equal(t, r.Lines, got.Lines)
	assert.False(t, got.Interpreted())
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetReading_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.GetReading("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReading_NoRelatingWhenStatic(t *testing.T) {
	s := newStore(t)
	r := domain.ReadingFromResult("static", "", oracle.Chinese, resolved(t, "问", 7, 7, 7, 8, 8, 8))
	require.NoError(t, s.SaveReading(r))

	got, err := s.GetReading("static")
	require.NoError(t, err)
	assert.Nil(t, got.Relating)
	assert.Equal(t, 11, got.Hexagram)
	assert.Equal(t, oracle.Chinese, got.Language)
}

func TestListReadings_NewestFirst(t *testing.T) {
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		r := domain.ReadingFromResult(id, "", oracle.English, resolved(t, "q "+id, 7, 7, 7, 7, 7, 7))
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveReading(r))
	}

	list, err := s.ListReadings(2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	list, err = s.ListReadings(2, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	n, err := s.CountReadings()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpdateInterpretationAndSearch(t *testing.T) {
	s := newStore(t)
	r := domain.ReadingFromResult("r1", "", oracle.English, resolved(t, "career change", 8, 8, 8, 8, 8, 8))
	require.NoError(t, s.SaveReading(r))
	other := domain.ReadingFromResult("r2", "", oracle.English, resolved(t, "garden", 7, 7, 7, 7, 7, 7))
	require.NoError(t, s.SaveReading(other))

	require.NoError(t, s.UpdateInterpretation("r1", "offline", "Yield and receive.", "Be receptive."))
	assert.ErrorIs(t, s.UpdateInterpretation("nope", "offline", "x", "y"), ErrNotFound)

	got, err := s.GetReading("r1")
	require.NoError(t, err)
	assert.True(t, got.Interpreted())
	assert.Equal(t, "offline", got.Provider)
	assert.Equal(t, "Be receptive.", got.Summary)

	found, err := s.SearchReadings("receptive", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "r1", found[0].ID)

	found, err = s.SearchReadings("garden", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "r2", found[0].ID)
}

func TestFindReading_Prefix(t *testing.T) {
	s := newStore(t)
	for _, id := range []string{"abc123", "abd456"} {
		require.NoError(t, s.SaveReading(domain.ReadingFromResult(id, "", oracle.English, resolved(t, "q", 7, 7, 7, 7, 7, 7))))
	}

	got, err := s.FindReading("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = s.FindReading("ab")
	assert.ErrorIs(t, err, ErrAmbiguousPrefix)

	_, err = s.FindReading("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindReading(" ")
	assert.ErrorIs(t, err, ErrNotFound)
}
