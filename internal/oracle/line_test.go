package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		total    int
		want     LineType
		changing bool
		yang     bool
	}{
		{6, OldYin, true, false},
		{7, YoungYang, false, true},
		{8, YoungYin, false, false},
		{9, OldYang, true, true},
	}
	for _, tt := range tests {
		got, changing, err := Classify(tt.total)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.changing, changing)
		assert.Equal(t, tt.yang, got.IsYang())
	}
}

func TestClassify_RejectsOutOfRange(t *testing.T) {
	for _, total := range []int{-1, 0, 5, 10, 12} {
		_, _, err := Classify(total)
		assert.ErrorIs(t, err, ErrInvalidTotal, "total %d", total)
	}
}

func TestNewLine(t *testing.T) {
	l, err := NewLine(Head, Tail, Tail)
	require.NoError(t, err)
	assert.Equal(t, 7, l.Total)
	assert.Equal(t, [3]Coin{Head, Tail, Tail}, l.Coins)
	assert.False(t, l.Changing)

	l, err = NewLine(Head, Head, Head)
	require.NoError(t, err)
	assert.Equal(t, 9, l.Total)
	assert.True(t, l.Changing)

	_, err = NewLine(Head, Coin(4), Tail)
	assert.ErrorIs(t, err, ErrInvalidCoin)
}

func TestLineFromTotal(t *testing.T) {
	for total := 6; total <= 9; total++ {
		l, err := LineFromTotal(total)
		require.NoError(t, err)
		assert.Equal(t, total, l.Total)
		assert.NoError(t, l.Validate())
	}
	_, err := LineFromTotal(10)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestLine_ValidateDetectsTampering(t *testing.T) {
	l := line(t, 7)
	l.Total = 8
	assert.Error(t, l.Validate())

	l = line(t, 9)
	l.Changing = false
	assert.Error(t, l.Validate())
}

func TestLineType_Glyph(t *testing.T) {
	assert.Equal(t, "---x---", OldYin.Glyph())
	assert.Equal(t, "---o---", OldYang.Glyph())
	assert.Equal(t, "老阳", OldYang.Name(Chinese))
	assert.Equal(t, "Young Yin", YoungYin.Name(English))
}

// line builds a line for total or fails the test.
func line(t *testing.T, total int) Line {
	t.Helper()
	l, err := LineFromTotal(total)
	require.NoError(t, err)
	return l
}

func lines(t *testing.T, totals ...int) []Line {
	t.Helper()
	out := make([]Line, len(totals))
	for i, total := range totals {
		out[i] = line(t, total)
	}
	return out
}
