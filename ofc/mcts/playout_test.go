package mcts

import (
	"testing"

	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/moves"
	"github.com/ofcsolver/ofcsolver/ofc/rng"
)

func TestPickActionArgmaxWhenEpsilonZero(t *testing.T) {
	actions := []moves.Action{{Score: 2}, {Score: 1}}
	rs := rng.New(1)
	got := pickAction(actions, rs, 0)
	if got.Score != 2 {
		t.Fatalf("expected argmax action with epsilon 0, got score %v", got.Score)
	}
}

func TestPickActionSingleActionShortCircuits(t *testing.T) {
	actions := []moves.Action{{Score: 1}}
	rs := rng.New(1)
	got := pickAction(actions, rs, 0.9)
	if got.Score != 1 {
		t.Fatalf("expected the only action regardless of epsilon")
	}
}

func TestPlayoutSelfReachesTerminal(t *testing.T) {
	s := openerState(t)
	rs := rng.New(42)
	final, ok := playoutSelf(s, rs, 0.1)
	if !ok {
		t.Fatalf("expected playoutSelf to succeed")
	}
	if !final.Arrangement.IsComplete() {
		t.Fatalf("expected playoutSelf to reach a complete arrangement")
	}
}

func TestPlayoutOpponentBuildsCompleteArrangement(t *testing.T) {
	rs := rng.New(99)
	arr, ok := playoutOpponent(card.FullDeck, card.Set(0), StreetOpener, rs, 0.1)
	if !ok {
		t.Fatalf("expected playoutOpponent to succeed")
	}
	if !arr.IsComplete() {
		t.Fatalf("expected playoutOpponent to produce a complete arrangement")
	}
}

func TestPlayoutOpponentResumesFromKnownCards(t *testing.T) {
	known := card.Set(0).
		Insert(mustParse(t, "Ah")).Insert(mustParse(t, "Ac")).Insert(mustParse(t, "2d")).
		Insert(mustParse(t, "5c")).Insert(mustParse(t, "6d")).Insert(mustParse(t, "7h")).
		Insert(mustParse(t, "8s"))
	unseen := card.FullDeck.Without(known)

	rs := rng.New(7)
	arr, ok := playoutOpponent(unseen, known, Street(2), rs, 0.1)
	if !ok {
		t.Fatalf("expected playoutOpponent to succeed")
	}
	if !arr.IsComplete() {
		t.Fatalf("expected playoutOpponent to finish the arrangement")
	}
	placed := arr.Top.Set().Union(arr.Middle.Set()).Union(arr.Bottom.Set())
	if placed.Intersect(known) != known {
		t.Fatalf("expected every known card to remain placed in the final arrangement")
	}
}

func TestSeedKnownOpponentPlacesEveryCard(t *testing.T) {
	known := card.Set(0).Insert(mustParse(t, "Kh")).Insert(mustParse(t, "Kc")).Insert(mustParse(t, "2d"))
	arr := seedKnownOpponent(known, card.FullDeck.Without(known))
	placed := arr.Top.Set().Union(arr.Middle.Set()).Union(arr.Bottom.Set())
	if placed != known {
		t.Fatalf("expected seedKnownOpponent to place exactly the known cards, got %v want %v", placed, known)
	}
}

func TestSimulateFromLeafUsesMemoOnHit(t *testing.T) {
	s := openerState(t)
	memo := NewMemo(16)
	memo.Record(s, 7.5)

	rs := rng.New(1)
	opts := DefaultOptions()
	value, ok := simulateFromLeaf(s, rs, opts, memo)
	if !ok {
		t.Fatalf("expected simulateFromLeaf to succeed on a memo hit")
	}
	if value != 7.5 {
		t.Fatalf("expected the memoized value 7.5 to short-circuit the playout, got %v", value)
	}
}

func TestSimulateFromLeafRecordsIntoMemo(t *testing.T) {
	s := openerState(t)
	memo := NewMemo(16)
	rs := rng.New(3)
	opts := DefaultOptions()

	_, ok := simulateFromLeaf(s, rs, opts, memo)
	if !ok {
		t.Fatalf("expected simulateFromLeaf to succeed")
	}
	if _, _, hit := memo.Lookup(s); !hit {
		t.Fatalf("expected simulateFromLeaf to record its result into the memo")
	}
}

func TestCardSetOfBuildsMatchingSet(t *testing.T) {
	cards := []card.Card{mustParse(t, "2h"), mustParse(t, "3c")}
	s := cardSetOf(cards)
	for _, c := range cards {
		if !s.Contains(c) {
			t.Fatalf("expected cardSetOf to contain %v", c)
		}
	}
	if s.Len() != len(cards) {
		t.Fatalf("expected cardSetOf to have length %d, got %d", len(cards), s.Len())
	}
}
