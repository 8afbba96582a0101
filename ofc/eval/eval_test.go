package eval

import (
	"testing"

	"github.com/ofcsolver/ofcsolver/ofc/card"
)

func mustParse(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.Parse(s)
	if err != nil {
		t.Fatalf("card.Parse(%q): %v", s, err)
	}
	return c
}

func hand(t *testing.T, texts ...string) []card.Card {
	t.Helper()
	out := make([]card.Card, len(texts))
	for i, s := range texts {
		out[i] = mustParse(t, s)
	}
	return out
}

func TestEvaluate5Categories(t *testing.T) {
	tests := []struct {
		name string
		hand []string
		want Category
	}{
		{"royal flush", []string{"As", "Ks", "Qs", "Js", "Ts"}, RoyalFlush},
		{"straight flush", []string{"9s", "8s", "7s", "6s", "5s"}, StraightFlush},
		{"quads", []string{"Ah", "Ac", "Ad", "As", "2h"}, Quads},
		{"full house", []string{"Ah", "Ac", "Ad", "2s", "2h"}, FullHouse},
		{"flush", []string{"Ah", "9h", "7h", "4h", "2h"}, Flush},
		{"straight", []string{"9s", "8h", "7d", "6c", "5s"}, Straight},
		{"wheel straight", []string{"As", "2h", "3d", "4c", "5s"}, Straight},
		{"trips", []string{"Ah", "Ac", "Ad", "2s", "3h"}, Trips},
		{"two pair", []string{"Ah", "Ac", "2d", "2s", "3h"}, TwoPair},
		{"pair", []string{"Ah", "Ac", "2d", "3s", "4h"}, Pair},
		{"high card", []string{"Ah", "Kc", "2d", "5s", "9h"}, HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(hand(t, tt.hand...))
			if got.Category() != tt.want {
				t.Fatalf("Evaluate(%v).Category() = %v, want %v", tt.hand, got.Category(), tt.want)
			}
		})
	}
}

func TestEvaluate3Categories(t *testing.T) {
	tests := []struct {
		name string
		hand []string
		want Category
	}{
		{"trips", []string{"Ah", "Ac", "Ad"}, Trips},
		{"pair", []string{"Ah", "Ac", "2d"}, Pair},
		{"high card", []string{"Ah", "Kc", "2d"}, HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(hand(t, tt.hand...))
			if got.Category() != tt.want {
				t.Fatalf("Evaluate(%v).Category() = %v, want %v", tt.hand, got.Category(), tt.want)
			}
		})
	}
}

func TestCategoryOrdering(t *testing.T) {
	higher := Evaluate(hand(t, "As", "Ks", "Qs", "Js", "Ts"))
	lower := Evaluate(hand(t, "Ah", "Ac", "Ad", "As", "2h"))
	if higher <= lower {
		t.Fatalf("royal flush should outrank quads: %v <= %v", higher, lower)
	}
}

func TestTiebreakWithinCategory(t *testing.T) {
	acesUp := Evaluate(hand(t, "Ah", "Ac", "2d", "3s", "4h"))
	kingsUp := Evaluate(hand(t, "Kh", "Kc", "2d", "3s", "4h"))
	if acesUp <= kingsUp {
		t.Fatalf("pair of aces should outrank pair of kings")
	}
}

func TestWildResolvesToRoyalFlush(t *testing.T) {
	got := Evaluate(hand(t, "Ks", "Qs", "Js", "Ts", "Xj"))
	if got.Category() != RoyalFlush {
		t.Fatalf("expected wild to complete a royal flush, got %v", got.Category())
	}
}

func TestWildResolvesToQuads(t *testing.T) {
	got := Evaluate(hand(t, "Ah", "Ac", "Ad", "2s", "Xj"))
	if got.Category() != Quads {
		t.Fatalf("expected wild to complete quads, got %v", got.Category())
	}
}

func TestTwoWildsResolveToBestCategory(t *testing.T) {
	got := Evaluate(hand(t, "Ah", "Kh", "Qh", "Xj", "Yj"))
	if got.Category() != RoyalFlush {
		t.Fatalf("expected two wilds to complete a royal flush, got %v", got.Category())
	}
}

func TestWildTopRowTrips(t *testing.T) {
	got := Evaluate(hand(t, "Ah", "Ac", "Xj"))
	if got.Category() != Trips {
		t.Fatalf("expected wild to complete top-row trips, got %v", got.Category())
	}
}

func TestWildTopRowNoFixedPair(t *testing.T) {
	got := Evaluate(hand(t, "Ah", "Kc", "Xj"))
	if got.Category() != Pair {
		t.Fatalf("expected single wild with no fixed pair to make a pair, got %v", got.Category())
	}
	if got.Tiebreak()[0] != int8(card.New(12, 0).Rank()) {
		t.Fatalf("expected wild to pair the higher fixed card (ace)")
	}
}

func TestEvaluatePanicsOnBadLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on invalid hand length")
		}
	}()
	Evaluate(hand(t, "Ah", "Kc"))
}
