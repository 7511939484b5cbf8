package oracle

import "fmt"

// LineType is the classification of a line total.
type LineType int

const (
	OldYin    LineType = 6
	YoungYang LineType = 7
	YoungYin  LineType = 8
	OldYang   LineType = 9
)

var lineTypeNames = map[LineType][2]string{
	OldYin:    {"Old Yin", "老阴"},
	YoungYang: {"Young Yang", "少阳"},
	YoungYin:  {"Young Yin", "少阴"},
	OldYang:   {"Old Yang", "老阳"},
}

func (t LineType) String() string {
	if n, ok := lineTypeNames[t]; ok {
		return n[0]
	}
	return fmt.Sprintf("LineType(%d)", int(t))
}

// Name returns the line type's name in lang.
func (t LineType) Name(lang Language) string {
	n, ok := lineTypeNames[t]
	if !ok {
		return t.String()
	}
	if lang == Chinese {
		return n[1]
	}
	return n[0]
}

// IsYang reports whether the line is solid (odd total).
func (t LineType) IsYang() bool { return t == YoungYang || t == OldYang }

// IsChanging reports whether the line turns into its opposite.
func (t LineType) IsChanging() bool { return t == OldYin || t == OldYang }

// Glyph draws the line as text. Changing lines carry an x (yin) or o (yang).
func (t LineType) Glyph() string {
	switch t {
	case OldYin:
		return "---x---"
	case YoungYang:
		return "-------"
	case YoungYin:
		return "--- ---"
	case OldYang:
		return "---o---"
	}
	return "???????"
}

// Classify maps a toss total to its line type and changing flag.
func Classify(total int) (LineType, bool, error) {
	t := LineType(total)
	if _, ok := lineTypeNames[t]; !ok {
		return 0, false, fmt.Errorf("classify %d: %w", total, ErrInvalidTotal)
	}
	return t, t.IsChanging(), nil
}

// Line is one cast: the three coins and their sum.
type Line struct {
	Total    int     `json:"total"`
	Coins    [3]Coin `json:"coins"`
	Changing bool    `json:"changing"`
}

// NewLine builds a line from three coins.
func NewLine(a, b, c Coin) (Line, error) {
	coins := [3]Coin{a, b, c}
	total := 0
	for _, coin := range coins {
		if !coin.Valid() {
			return Line{}, fmt.Errorf("new line: %w (got %d)", ErrInvalidCoin, int(coin))
		}
		total += int(coin)
	}
	_, changing, err := Classify(total)
	if err != nil {
		return Line{}, err
	}
	return Line{Total: total, Coins: coins, Changing: changing}, nil
}

// LineFromTotal builds a line for a total cast elsewhere, such as with
// physical coins. Heads come first in the coin order.
func LineFromTotal(total int) (Line, error) {
	if _, _, err := Classify(total); err != nil {
		return Line{}, err
	}
	heads := total - 6
	var coins [3]Coin
	for i := range coins {
		if i < heads {
			coins[i] = Head
		} else {
			coins[i] = Tail
		}
	}
	return NewLine(coins[0], coins[1], coins[2])
}

// Type returns the line's classification.
func (l Line) Type() LineType { return LineType(l.Total) }

// IsYang reports whether the line total is odd.
func (l Line) IsYang() bool { return l.Total%2 != 0 }

// Validate checks that the coins, total and changing flag agree.
func (l Line) Validate() error {
	want, err := NewLine(l.Coins[0], l.Coins[1], l.Coins[2])
	if err != nil {
		return err
	}
	if want != l {
		return fmt.Errorf("line %d: coins sum to %d: %w", l.Total, want.Total, ErrInvalidTotal)
	}
	return nil
}
