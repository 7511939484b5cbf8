package oracle

import (
	"math/rand/v2"
	"sync"
)

// Coin is the weight of one tossed coin.
type Coin int

const (
	Tail Coin = 2
	Head Coin = 3
)

func (c Coin) String() string {
	switch c {
	case Head:
		return "head"
	case Tail:
		return "tail"
	}
	return "invalid"
}

// Valid reports whether c is Head or Tail.
func (c Coin) Valid() bool {
	return c == Head || c == Tail
}

// Tosser draws coins from a random source. It is safe for concurrent use.
type Tosser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTosser creates a Tosser over src. Use a seeded source for reproducible casts.
func NewTosser(src rand.Source) *Tosser {
	return &Tosser{rng: rand.New(src)}
}

// DefaultTosser creates a Tosser backed by the runtime's global generator.
func DefaultTosser() *Tosser {
	return &Tosser{}
}

// Toss flips one fair coin.
func (t *Tosser) Toss() Coin {
	if t.bit() == 0 {
		return Tail
	}
	return Head
}

// TossLine tosses three coins and returns the resulting line.
func (t *Tosser) TossLine() Line {
	l, _ := NewLine(t.Toss(), t.Toss(), t.Toss())
	return l
}

func (t *Tosser) bit() uint64 {
	if t.rng == nil {
		return rand.Uint64() & 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Uint64() & 1
}
