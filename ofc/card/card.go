// Package card implements a bit-packed card identity and set algebra for
// Pineapple Open-Face Chinese Poker. Cards are immutable value objects; a
// Set is a 54-bit mask covering the 52 standard cards plus two wildcards.
package card

import (
	"fmt"
	"math/bits"
)

// Card is a single card in 0..53. Indices 0..51 encode rank*4+suit with rank
// in 0..12 (2..A) and suit in 0..3 (c,d,h,s). Indices 52 and 53 are the two
// wildcards.
type Card uint8

// The two wild indices. They compare equal on IsWild but remain distinct so
// a Set can hold both.
const (
	WildX Card = 52
	WildY Card = 53
)

// NumRanks and NumSuits describe the standard 52-card portion of the index
// space; the wildcards sit outside it.
const (
	NumRanks = 13
	NumSuits = 4
)

// New builds a standard (non-wild) card from rank (0..12) and suit (0..3).
func New(rank, suit int) Card {
	return Card(rank*NumSuits + suit)
}

// Rank returns the card's rank in 0..12 (2..A). Wild cards return -1.
func (c Card) Rank() int {
	if c.IsWild() {
		return -1
	}
	return int(c) / NumSuits
}

// Suit returns the card's suit in 0..3 (c,d,h,s). Wild cards return -1.
func (c Card) Suit() int {
	if c.IsWild() {
		return -1
	}
	return int(c) % NumSuits
}

// IsWild reports whether c is one of the two jokers.
func (c Card) IsWild() bool {
	return c == WildX || c == WildY
}

const rankLetters = "23456789TJQKA"
const suitLetters = "cdhs"

// String renders the card in its canonical two-character wire form, e.g.
// "As", "Td", "2c". Wilds print as "Xj"/"Yj".
func (c Card) String() string {
	switch c {
	case WildX:
		return "Xj"
	case WildY:
		return "Yj"
	}
	if int(c) >= NumRanks*NumSuits {
		return "??"
	}
	return fmt.Sprintf("%c%c", rankLetters[c.Rank()], suitLetters[c.Suit()])
}

// Parse parses the canonical two-character wire form back into a Card.
// Rank letters are 2-9,T,J,Q,K,A; suit letters are c,d,h,s (case
// insensitive); wilds are spelled "Xj"/"Yj" with either letter case and
// parse to WildX/WildY respectively.
func Parse(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("card: invalid text %q: want 2 characters", s)
	}
	r, suit := s[0], s[1]
	if (r == 'X' || r == 'x' || r == 'Y' || r == 'y') && (suit == 'j' || suit == 'J') {
		if r == 'X' || r == 'x' {
			return WildX, nil
		}
		return WildY, nil
	}
	rank, err := parseRank(r)
	if err != nil {
		return 0, fmt.Errorf("card: invalid text %q: %w", s, err)
	}
	su, err := parseSuit(suit)
	if err != nil {
		return 0, fmt.Errorf("card: invalid text %q: %w", s, err)
	}
	return New(rank, su), nil
}

func parseRank(b byte) (int, error) {
	switch b {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return int(b - '2'), nil
	case 'T', 't':
		return 8, nil
	case 'J', 'j':
		return 9, nil
	case 'Q', 'q':
		return 10, nil
	case 'K', 'k':
		return 11, nil
	case 'A', 'a':
		return 12, nil
	default:
		return 0, fmt.Errorf("invalid rank %q", b)
	}
}

func parseSuit(b byte) (int, error) {
	switch b {
	case 'c', 'C':
		return 0, nil
	case 'd', 'D':
		return 1, nil
	case 'h', 'H':
		return 2, nil
	case 's', 'S':
		return 3, nil
	default:
		return 0, fmt.Errorf("invalid suit %q", b)
	}
}

// MarshalJSON renders c in its canonical two-character wire form.
func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON parses c from its canonical two-character wire form.
func (c *Card) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' {
		return fmt.Errorf("card: invalid JSON text %s", data)
	}
	s := string(data[1 : len(data)-1])
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Set is a 54-bit mask of cards. Bit i corresponds to Card(i).
type Set uint64

// FullDeck holds every standard card plus both wilds.
var FullDeck Set

func init() {
	for i := 0; i < NumRanks*NumSuits; i++ {
		FullDeck = FullDeck.Insert(Card(i))
	}
	FullDeck = FullDeck.Insert(WildX).Insert(WildY)
}

// Insert returns s with c added.
func (s Set) Insert(c Card) Set {
	return s | (1 << uint(c))
}

// Remove returns s with c removed.
func (s Set) Remove(c Card) Set {
	return s &^ (1 << uint(c))
}

// Contains reports whether c is in s.
func (s Set) Contains(c Card) bool {
	return s&(1<<uint(c)) != 0
}

// Union returns s | other.
func (s Set) Union(other Set) Set {
	return s | other
}

// Intersect returns s & other.
func (s Set) Intersect(other Set) Set {
	return s & other
}

// Without returns s with every card of other removed (s \ other).
func (s Set) Without(other Set) Set {
	return s &^ other
}

// Len returns the cardinality of s.
func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Iter calls fn for every card in s in ascending index order, stopping early
// if fn returns false.
func (s Set) Iter(fn func(Card) bool) {
	for s != 0 {
		i := bits.TrailingZeros64(uint64(s))
		if !fn(Card(i)) {
			return
		}
		s &= s - 1
	}
}

// Slice returns the cards of s as a slice, in ascending index order.
func (s Set) Slice() []Card {
	out := make([]Card, 0, s.Len())
	s.Iter(func(c Card) bool {
		out = append(out, c)
		return true
	})
	return out
}
