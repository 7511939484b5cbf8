package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbaille/zhouyi/internal/config"
	"github.com/pbaille/zhouyi/internal/logging"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/pbaille/zhouyi/internal/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{Provider: "offline", Language: "en", SummaryLength: 100, LogLevel: "error"}
}

func newTestApp(t *testing.T) (*app, *options) {
	t.Helper()
	opts := &options{
		dbPath:   filepath.Join(t.TempDir(), "nested", "zhouyi.db"),
		lang:     "en",
		provider: "offline",
		logLevel: "error",
	}
	a, err := newApp(testConfig(), opts, logging.NewNop(), sessions.NewMemoryStore(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, opts
}

func TestRunCast_WithTotals(t *testing.T) {
	a, _ := newTestApp(t)
	var out bytes.Buffer

	err := runCast(context.Background(), a, castOptions{
		question: "Should I move?",
		lang:     oracle.English,
		totals:   []int{7, 8, 9, 6, 7, 8},
	}, strings.NewReader(""), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Line 1")
	assert.Contains(t, text, "#63 Ji Ji")
	assert.Contains(t, text, "#17")
	assert.Contains(t, text, "Summary:")
	assert.Contains(t, text, "Saved as")

	readings, err := a.history.ListReadings(10, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "Should I move?", readings[0].Question)
	assert.True(t, readings[0].Interpreted())
	assert.Equal(t, "offline", readings[0].Provider)

	ids, err := a.sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "the cast session is dropped once saved")
}

func TestRunCast_PromptsForQuestion(t *testing.T) {
	a, _ := newTestApp(t)
	var out bytes.Buffer

	in := strings.NewReader("\n  \nWhat should I study?\n\n\n\n\n\n\n")
	err := runCast(context.Background(), a, castOptions{lang: oracle.English, noInterpret: true}, in, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out.String(), "Your question: "))
	assert.Contains(t, out.String(), "Press Enter to cast line 6/6")
	assert.NotContains(t, out.String(), "Summary:")

	readings, err := a.history.ListReadings(10, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "What should I study?", readings[0].Question)
	assert.Len(t, readings[0].Lines, 6)
	assert.False(t, readings[0].Interpreted())
}

func TestRunCast_EmptyInput(t *testing.T) {
	a, _ := newTestApp(t)
	err := runCast(context.Background(), a, castOptions{lang: oracle.English}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, oracle.ErrEmptyQuestion)
}

func TestRunCast_Chinese(t *testing.T) {
	a, _ := newTestApp(t)
	var out bytes.Buffer

	err := runCast(context.Background(), a, castOptions{
		question: "问前程",
		lang:     oracle.Chinese,
		totals:   []int{8, 8, 8, 8, 8, 8},
	}, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "坤")
	assert.Contains(t, out.String(), "总结")
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd(testConfig())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestHexagramCommand(t *testing.T) {
	out := execute(t, "hexagram", "1")
	assert.Contains(t, out, "#1 Qian (The Creative) 111111")
	assert.Equal(t, 6, strings.Count(out, oracle.YoungYang.Glyph()))

	out = execute(t, "--lang", "zh", "hexagram", "000000")
	assert.Contains(t, out, "#2 坤")
}

func TestTrigramsCommand(t *testing.T) {
	out := execute(t, "trigrams")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "111  Qian (Heaven)", lines[0])
	assert.Equal(t, "000  Kun (Earth)", lines[7])
}

func TestHistoryAndShowCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "zhouyi.db")

	out := execute(t, "--db", db, "--provider", "offline", "cast", "--lines", "7,7,7,8,8,8", "Is it time?")
	assert.Contains(t, out, "#11")

	out = execute(t, "--db", db, "history")
	assert.Contains(t, out, "Is it time?")
	id := strings.Fields(out)[0]

	out = execute(t, "--db", db, "show", id)
	assert.Contains(t, out, "Question: Is it time?")
	assert.Contains(t, out, "[offline]")

	out = execute(t, "--db", db, "history", "-q", "nothing-matches")
	assert.Contains(t, out, "No readings yet")
}

func TestCastCommand_RejectsShortLines(t *testing.T) {
	cmd := newRootCmd(testConfig())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "x.db"), "cast", "--lines", "7,8", "q"})
	assert.Error(t, cmd.Execute())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "问问...", truncate(strings.Repeat("问", 8), 5))
}
