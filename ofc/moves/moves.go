// Package moves enumerates legal (placement, discard) actions for a given
// street, prunes moves that force a foul or duplicate an equivalent
// placement, and orders the survivors by ofc/heuristic so MCTS expansion
// visits the most promising children first.
package moves

import (
	"sort"

	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/heuristic"
)

// ActionKind distinguishes the three shapes an Action can take. Action is a
// tagged sum type rather than an interface hierarchy: the move generator and
// MCTS only ever need to switch on Kind, and a closed set of three cases
// does not earn the indirection of dynamic dispatch.
type ActionKind uint8

const (
	// KindOpener places all five street-0 cards in one move.
	KindOpener ActionKind = iota
	// KindStreet places two of three dealt cards and discards the third.
	KindStreet
	// KindFold discards the entire street's deal without placing anything,
	// the only legal move when no placement avoids a forced foul.
	KindFold
)

// Placement pairs a card with the row it is placed into.
type Placement struct {
	Card card.Card
	Row  arrangement.RowName
}

// Action is the sum type returned by the generators below. Only the fields
// relevant to Kind are populated.
type Action struct {
	Kind       ActionKind
	Opener     [5]Placement
	Placements [2]Placement
	Discard    card.Card
	Score      float64
}

// Apply returns a with the action's placements applied. It does not mutate
// a.
func (act Action) Apply(a arrangement.Arrangement) arrangement.Arrangement {
	out := a.Clone()
	switch act.Kind {
	case KindOpener:
		for _, p := range act.Opener {
			out.Place(p.Card, p.Row)
		}
	case KindStreet:
		for _, p := range act.Placements {
			out.Place(p.Card, p.Row)
		}
	case KindFold:
		// nothing placed
	}
	return out
}

// rowAssignment enumerates the 3 rows a single card can go to; row capacity
// is checked by the caller via arrangement.CanPlace semantics replicated
// locally against a scratch row-count array (the enumeration itself must
// consider placements that would fill a row mid-tuple).
var allRowNames = [3]arrangement.RowName{arrangement.Top, arrangement.Middle, arrangement.Bottom}

// GenerateOpener enumerates legal full placements of the 5 dealt cards
// across the three rows for street 0, dedupes placements that produce the
// same per-row multiset, prunes placements that obviously force a foul, and
// returns the topN candidates ordered by heuristic score, highest first.
// topN defaults to 30 when <= 0.
func GenerateOpener(dealt [5]card.Card, unseen card.Set, topN int) []Action {
	if topN <= 0 {
		topN = 30
	}

	type rawTuple [5]arrangement.RowName
	seen := map[[3]uint16]bool{}
	var actions []Action

	var assign rawTuple
	var rec func(i int)
	rec = func(i int) {
		if i == 5 {
			counts := [3]int{}
			for _, r := range assign {
				counts[r]++
			}
			if counts[arrangement.Top] > 3 || counts[arrangement.Middle] > 5 || counts[arrangement.Bottom] > 5 {
				return
			}
			a := arrangement.New()
			var opener [5]Placement
			for j, r := range assign {
				a.Place(dealt[j], r)
				opener[j] = Placement{Card: dealt[j], Row: r}
			}
			key := dedupeKey(a)
			if seen[key] {
				return
			}
			seen[key] = true
			if prunesForcedFoul(a) {
				return
			}
			actions = append(actions, Action{
				Kind:   KindOpener,
				Opener: opener,
				Score:  heuristic.Score(a, unseen),
			})
			return
		}
		for _, r := range allRowNames {
			assign[i] = r
			rec(i + 1)
		}
	}
	rec(0)

	sort.Slice(actions, func(i, j int) bool { return actions[i].Score > actions[j].Score })
	if len(actions) > topN {
		actions = actions[:topN]
	}
	return actions
}

// dedupeKey summarizes an arrangement by per-row card multiset (order
// within a row never matters, since the evaluator is symmetric) so
// equivalent placements collapse to one candidate.
func dedupeKey(a arrangement.Arrangement) [3]uint16 {
	rowMask := func(r arrangement.Row) uint16 {
		var m uint16
		for _, c := range r.Cards {
			m |= 1 << uint(c)
		}
		return m
	}
	return [3]uint16{rowMask(a.Top), rowMask(a.Middle), rowMask(a.Bottom)}
}

// prunesForcedFoul reports whether a partial (or complete) arrangement has
// already made a foul unavoidable: a full row strictly stronger than a full
// row below it. Rows that are not yet full cannot yet force a foul.
func prunesForcedFoul(a arrangement.Arrangement) bool {
	if a.Top.Full() && a.Middle.Full() && a.RowHandType(arrangement.Top) > a.RowHandType(arrangement.Middle) {
		return true
	}
	if a.Middle.Full() && a.Bottom.Full() && a.RowHandType(arrangement.Middle) > a.RowHandType(arrangement.Bottom) {
		return true
	}
	return false
}

// GenerateStreet enumerates legal actions for streets 1..4: for each choice
// of the discarded card (3 options), every placement of the remaining two
// cards across currently-open row slots, deduped and foul-pruned the same
// way as GenerateOpener, ordered by heuristic score highest first. If every
// combination forces a foul, a single KindFold action discarding all three
// dealt cards is returned so the caller always has a legal move.
func GenerateStreet(a arrangement.Arrangement, dealt [3]card.Card, unseen card.Set) []Action {
	var actions []Action
	seen := map[[3]uint16]bool{}

	for discardIdx := 0; discardIdx < 3; discardIdx++ {
		var place []card.Card
		for i, c := range dealt {
			if i != discardIdx {
				place = append(place, c)
			}
		}
		openRows := openRowNames(a)
		for _, r0 := range openRows {
			for _, r1 := range openRows {
				if r0 == r1 && !hasTwoSlots(a, r0) {
					continue
				}
				cand := a.Clone()
				if !cand.CanPlace(r0) {
					continue
				}
				cand.Place(place[0], r0)
				if !cand.CanPlace(r1) {
					continue
				}
				cand.Place(place[1], r1)

				key := dedupeKey(cand)
				dk := [3]uint16{key[0], key[1], key[2] ^ uint16(discardIdx+1)<<13}
				if seen[dk] {
					continue
				}
				seen[dk] = true
				if prunesForcedFoul(cand) {
					continue
				}
				actions = append(actions, Action{
					Kind: KindStreet,
					Placements: [2]Placement{
						{Card: place[0], Row: r0},
						{Card: place[1], Row: r1},
					},
					Discard: dealt[discardIdx],
					Score:   heuristic.Score(cand, unseen),
				})
			}
		}
	}

	sort.Slice(actions, func(i, j int) bool { return actions[i].Score > actions[j].Score })
	if len(actions) == 0 {
		return []Action{{Kind: KindFold}}
	}
	return actions
}

// openRowNames returns the row names with at least one open slot.
func openRowNames(a arrangement.Arrangement) []arrangement.RowName {
	var out []arrangement.RowName
	for _, r := range allRowNames {
		if a.CanPlace(r) {
			out = append(out, r)
		}
	}
	return out
}

// hasTwoSlots reports whether row n has at least two open slots, needed
// when both cards of a street placement land in the same row.
func hasTwoSlots(a arrangement.Arrangement, n arrangement.RowName) bool {
	switch n {
	case arrangement.Top:
		return a.Top.Capacity-len(a.Top.Cards) >= 2
	case arrangement.Middle:
		return a.Middle.Capacity-len(a.Middle.Cards) >= 2
	default:
		return a.Bottom.Capacity-len(a.Bottom.Cards) >= 2
	}
}
