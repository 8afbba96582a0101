package score

import (
	"testing"

	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
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

func build(t *testing.T, top, mid, bot []string) arrangement.Arrangement {
	t.Helper()
	a := arrangement.New()
	for _, s := range top {
		a.Place(mustParse(t, s), arrangement.Top)
	}
	for _, s := range mid {
		a.Place(mustParse(t, s), arrangement.Middle)
	}
	for _, s := range bot {
		a.Place(mustParse(t, s), arrangement.Bottom)
	}
	return a
}

func TestSelfScoreFouled(t *testing.T) {
	a := build(t,
		[]string{"Ah", "Ac", "2d"},
		[]string{"5c", "6d", "7h", "8s", "9c"},
		[]string{"2h", "4d", "6h", "8d", "Tc"},
	)
	if got, want := SelfScore(a, 6), -6; got != want {
		t.Fatalf("SelfScore(fouled, 6) = %d, want %d", got, want)
	}
}

func TestSelfScoreNotFouled(t *testing.T) {
	a := build(t,
		[]string{"2c", "3c", "4d"},
		[]string{"5c", "6d", "7h", "8s", "9c"},
		[]string{"Th", "Jh", "Qh", "Kh", "Ah"},
	)
	if got, want := SelfScore(a, 6), a.Royalties(); got != want {
		t.Fatalf("SelfScore(not fouled) = %d, want royalties %d", got, want)
	}
}

func TestMatchupBothFouled(t *testing.T) {
	foul := build(t,
		[]string{"Ah", "Ac", "2d"},
		[]string{"5c", "6d", "7h", "8s", "9c"},
		[]string{"2h", "4d", "6h", "8d", "Tc"},
	)
	self, opp := Matchup(foul, foul, 6)
	if self != 0 || opp != 0 {
		t.Fatalf("Matchup(both fouled) = (%d, %d), want (0, 0)", self, opp)
	}
}

func TestMatchupSelfFouledOnly(t *testing.T) {
	fouled := build(t,
		[]string{"Ah", "Ac", "2d"},
		[]string{"5c", "6d", "7h", "8s", "9c"},
		[]string{"2h", "4d", "6h", "8d", "Tc"},
	)
	// clean carries nonzero royalties (middle straight = 4, bottom straight
	// = 2) so this case also exercises the royalty differential, not just
	// the flat foul penalty.
	clean := build(t,
		[]string{"2c", "3c", "4d"},
		[]string{"5d", "6h", "7s", "8c", "9d"},
		[]string{"Th", "Jc", "Qd", "Ks", "Ah"},
	)
	if got := clean.Royalties(); got != 6 {
		t.Fatalf("expected the clean fixture to carry 6 royalties, got %d", got)
	}

	self, opp := Matchup(fouled, clean, 6)
	// Self loses all three rows plus the scoop bonus (0 vs 3+3=6), forfeits
	// the flat foulPenalty, and forfeits its own royalties to zero against
	// clean's full 6 royalties: self = -6 (penalty) + (0 - 6) = -12, opp =
	// 6 (rows+scoop) + (6 - 0) = 12.
	if self != -12 || opp != 12 {
		t.Fatalf("Matchup(self fouled) = (%d, %d), want (-12, 12)", self, opp)
	}
}

func TestMatchupScoopBonus(t *testing.T) {
	winner := build(t,
		[]string{"6h", "6c", "2d"},                // pair of sixes
		[]string{"9h", "9c", "2s", "4d", "5c"},     // pair of nines, outranks top
		[]string{"Kh", "Kc", "2h", "4h", "5h"},     // pair of kings, outranks middle
	)
	loser := build(t,
		[]string{"2h", "3c", "4d"},                 // high card
		[]string{"5d", "7h", "9s", "Jc", "2c"},     // high card, outranks top
		[]string{"6s", "8h", "Tc", "Qd", "3h"},     // high card, outranks middle
	)
	selfScore, oppScore := Matchup(winner, loser, 6)
	if selfScore <= 0 {
		t.Fatalf("expected winner to score positive on a full scoop, got %d", selfScore)
	}
	if oppScore >= 0 {
		t.Fatalf("expected loser to score negative on a full scoop, got %d", oppScore)
	}
	// A clean sweep of all three rows adds the scoop bonus on top of the
	// three row-win bonuses.
	minExpected := rowWinBonus*3 + scoopBonus
	if selfScore < minExpected {
		t.Fatalf("expected at least the scoop floor %d, got %d", minExpected, selfScore)
	}
}

func TestMatchupRoyaltyDifferentialTransfers(t *testing.T) {
	highRoyalty := build(t,
		[]string{"Qh", "Qc", "2d"},                 // pair of queens: 7 royalty
		[]string{"5d", "6h", "7s", "8c", "9d"},      // straight: 4 royalty, outranks top
		[]string{"Th", "Jc", "Qd", "Ks", "Ah"},      // broadway straight: 2 royalty, outranks middle
	)
	noRoyalty := build(t,
		[]string{"2h", "3c", "4d"},                  // high card
		[]string{"5d", "7h", "9s", "Jc", "2c"},      // high card, outranks top
		[]string{"6s", "8h", "Tc", "Qd", "3h"},      // high card, outranks middle
	)
	self, opp := Matchup(highRoyalty, noRoyalty, 6)
	if self <= 0 {
		t.Fatalf("expected the royalty-rich side to score positive, got %d", self)
	}
	if opp >= 0 {
		t.Fatalf("expected the royalty-poor side to score negative, got %d", opp)
	}
}
