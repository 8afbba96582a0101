// Package mcts implements the parallel Monte-Carlo Tree Search engine that
// plays a partial OFC hand to terminal states and propagates expected
// scores back to the root action. It is the hottest, most concurrent
// package in the module; ofc/moves, ofc/heuristic, ofc/score, and ofc/card
// are the only state it reads, and the shared tree (in tree-parallel mode)
// is the only state it writes concurrently.
package mcts

import (
	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
)

// Street numbers the dealing schedule: 0 is the five-card opener, 1..4 are
// the three-card (place 2, discard 1) streets.
type Street int

const (
	StreetOpener Street = 0
	MaxStreet    Street = 4
)

// State is an immutable snapshot of one player's hand in progress: the
// arrangement built so far, the cards not yet seen by anyone, the cards
// this player has discarded, any cards known to belong to an opponent, the
// current street, and the cards just dealt and awaiting placement.
type State struct {
	Arrangement   arrangement.Arrangement
	Unseen        card.Set
	Discarded     card.Set
	KnownOpponent card.Set
	Street        Street
	Dealt         []card.Card
}

// Clone returns a deep copy of s; only Arrangement and Dealt hold
// per-instance backing storage.
func (s State) Clone() State {
	return State{
		Arrangement:   s.Arrangement.Clone(),
		Unseen:        s.Unseen,
		Discarded:     s.Discarded,
		KnownOpponent: s.KnownOpponent,
		Street:        s.Street,
		Dealt:         append([]card.Card(nil), s.Dealt...),
	}
}

// IsTerminal reports whether every row is full.
func (s State) IsTerminal() bool {
	return s.Arrangement.IsComplete()
}
