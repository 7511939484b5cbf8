package oracle

import (
	"fmt"
	"strings"
)

// BinaryKey encodes lines bottom-first: '1' for yang (odd), '0' for yin (even).
func BinaryKey(lines []Line) string {
	var sb strings.Builder
	sb.Grow(len(lines))
	for _, l := range lines {
		if l.IsYang() {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// parseKey turns an n-character binary key into an integer. Character i
// becomes bit i, so the bottom line is the least significant bit.
func parseKey(key string, n int) (int, bool) {
	if len(key) != n {
		return 0, false
	}
	k := 0
	for i := 0; i < n; i++ {
		switch key[i] {
		case '1':
			k |= 1 << i
		case '0':
		default:
			return 0, false
		}
	}
	return k, true
}

// ResolveTrigram looks up the trigram for exactly three lines.
// Any other count is a partial figure and yields false.
func ResolveTrigram(lines []Line) (Trigram, bool) {
	if len(lines) != 3 {
		return Trigram{}, false
	}
	k, ok := parseKey(BinaryKey(lines), 3)
	if !ok {
		return Trigram{}, false
	}
	return trigramTable[k], true
}

// LowerTrigram resolves the bottom three lines once they exist.
func LowerTrigram(lines []Line) (Trigram, bool) {
	if len(lines) < 3 {
		return Trigram{}, false
	}
	return ResolveTrigram(lines[:3])
}

// UpperTrigram resolves lines four to six once all six exist.
func UpperTrigram(lines []Line) (Trigram, bool) {
	if len(lines) != 6 {
		return Trigram{}, false
	}
	return ResolveTrigram(lines[3:])
}

// ResolveHexagram looks up the hexagram for exactly six lines.
func ResolveHexagram(lines []Line) (Hexagram, bool) {
	if len(lines) != 6 {
		return Hexagram{}, false
	}
	h, err := LookupHexagram(BinaryKey(lines))
	if err != nil {
		return Hexagram{}, false
	}
	return h, true
}

// LookupHexagram finds the hexagram with the given 6-character key.
func LookupHexagram(key string) (Hexagram, error) {
	k, ok := parseKey(key, 6)
	if !ok {
		return Hexagram{}, fmt.Errorf("lookup hexagram %q: %w", key, ErrUnknownKey)
	}
	h := hexagramTable[hexagramIndex[k]]
	if h.Binary != key {
		return Hexagram{}, fmt.Errorf("lookup hexagram %q: %w", key, ErrUnknownKey)
	}
	return h, nil
}

// ChangedKey is the binary key after every changing line flips polarity.
func ChangedKey(lines []Line) string {
	b := []byte(BinaryKey(lines))
	for i, l := range lines {
		if !l.Changing {
			continue
		}
		if b[i] == '1' {
			b[i] = '0'
		} else {
			b[i] = '1'
		}
	}
	return string(b)
}

// ChangingPositions returns 1-based positions (bottom = 1) of changing lines.
func ChangingPositions(lines []Line) []int {
	var out []int
	for i, l := range lines {
		if l.Changing {
			out = append(out, i+1)
		}
	}
	return out
}

// ResolveRelating returns the hexagram the cast moves toward. It is absent
// unless there are six lines and at least one of them changes.
func ResolveRelating(lines []Line) (Hexagram, bool) {
	if len(lines) != 6 || len(ChangingPositions(lines)) == 0 {
		return Hexagram{}, false
	}
	h, err := LookupHexagram(ChangedKey(lines))
	if err != nil {
		return Hexagram{}, false
	}
	return h, true
}
