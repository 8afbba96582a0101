// Package heuristic provides a fast, non-terminal static evaluation used to
// order generated actions and to place an opponent's known cards during
// MCTS playouts. It never
// calls into ofc/mcts; it only reads arrangement and card state, so it is
// safe to call from the move generator's ordering pass.
package heuristic

import (
	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/eval"
)

// Weights, named per spec.md's fixed heuristic formula.
const (
	topWeight    = 0.3
	middleWeight = 0.5
	bottomWeight = 0.5
)

// Score computes h = partial_royalties + 0.3*top + 0.5*mid + 0.5*bot -
// foul_risk for a (possibly partial) arrangement, given the set of cards not
// yet dealt or placed.
func Score(a arrangement.Arrangement, unseen card.Set) float64 {
	h := partialRoyalties(a)
	h += topWeight * RowStrength(a.Top, unseen)
	h += middleWeight * RowStrength(a.Middle, unseen)
	h += bottomWeight * RowStrength(a.Bottom, unseen)
	h -= FoulRisk(a)
	return h
}

// partialRoyalties sums the royalty value of whichever rows are already
// full, without requiring the whole arrangement to be complete.
func partialRoyalties(a arrangement.Arrangement) float64 {
	var total float64
	if a.Top.Full() {
		total += float64(rowRoyalty(arrangement.Top, a.RowHandType(arrangement.Top)))
	}
	if a.Middle.Full() {
		total += float64(rowRoyalty(arrangement.Middle, a.RowHandType(arrangement.Middle)))
	}
	if a.Bottom.Full() {
		total += float64(rowRoyalty(arrangement.Bottom, a.RowHandType(arrangement.Bottom)))
	}
	return total
}

// rowRoyalty re-derives the royalty value a single full row would contribute
// in isolation, mirroring arrangement's internal table without requiring the
// whole arrangement to be complete (arrangement.Royalties panics on a
// partial arrangement by design, since a foul check needs all three rows).
func rowRoyalty(n arrangement.RowName, h eval.HandType) int {
	switch n {
	case arrangement.Top:
		switch h.Category() {
		case eval.Pair:
			if r := int(h.Tiebreak()[0]); r >= 4 {
				return r - 3
			}
			return 0
		case eval.Trips:
			return 10 + int(h.Tiebreak()[0])
		}
		return 0
	case arrangement.Middle:
		return middleRoyaltyOf(h.Category())
	default:
		return bottomRoyaltyOf(h.Category())
	}
}

func middleRoyaltyOf(c eval.Category) int {
	switch c {
	case eval.Trips:
		return 2
	case eval.Straight:
		return 4
	case eval.Flush:
		return 8
	case eval.FullHouse:
		return 12
	case eval.Quads:
		return 20
	case eval.StraightFlush:
		return 30
	case eval.RoyalFlush:
		return 50
	default:
		return 0
	}
}

func bottomRoyaltyOf(c eval.Category) int {
	switch c {
	case eval.Straight:
		return 2
	case eval.Flush:
		return 4
	case eval.FullHouse:
		return 6
	case eval.Quads:
		return 10
	case eval.StraightFlush:
		return 15
	case eval.RoyalFlush:
		return 25
	default:
		return 0
	}
}

// RowStrength estimates, as a small ordinal, the best hand-type reachable in
// row given the cards still unseen. A full row returns its actual category
// scaled up; a partial row estimates potential from rank/suit matches
// remaining in unseen.
func RowStrength(row arrangement.Row, unseen card.Set) float64 {
	if row.Full() {
		return float64(eval.Evaluate(row.Cards).Category()) * 10
	}
	if len(row.Cards) == 0 {
		return 0
	}

	var rankCounts [card.NumRanks]int
	var suitCounts [card.NumSuits]int
	wilds := 0
	for _, c := range row.Cards {
		if c.IsWild() {
			wilds++
			continue
		}
		rankCounts[c.Rank()]++
		suitCounts[c.Suit()]++
	}

	bestRankCount, bestSuitCount, bestSuit := 0, 0, -1
	for _, n := range rankCounts {
		if n > bestRankCount {
			bestRankCount = n
		}
	}
	for s, n := range suitCounts {
		if n > bestSuitCount {
			bestSuitCount = n
			bestSuit = s
		}
	}

	// Pair/trips/quads potential: existing same-rank cards plus wilds
	// already in hand push toward the next category up.
	pairPotential := float64(bestRankCount+wilds) * 2

	// Flush draw potential: cards sharing the majority suit plus unseen
	// cards of that suit still available.
	flushOuts := 0
	if bestSuit >= 0 {
		unseen.Iter(func(c card.Card) bool {
			if !c.IsWild() && c.Suit() == bestSuit {
				flushOuts++
			}
			return true
		})
	}
	flushPotential := float64(bestSuitCount) + float64(flushOuts)*0.1

	return pairPotential + flushPotential
}

// FoulRisk estimates, in [0, foulPenalty], the probability that forced
// completions of the arrangement will foul, by comparing the hand types of
// complete adjacent rows. foulPenalty is taken as a
// fixed ceiling so the estimate composes with ofc/score's penalty scale.
const foulPenaltyCeiling = 10.0

// FoulRisk compares the already-placed rows: if either row of an adjacent
// pair is incomplete, that pair adds no risk; if both rows of a pair are
// complete and already violate monotonicity, risk is the full ceiling.
// Partial rows are not compared, so an arrangement with no complete
// violating pair has risk 0.
func FoulRisk(a arrangement.Arrangement) float64 {
	risk := 0.0
	if a.Top.Full() && a.Middle.Full() {
		if a.RowHandType(arrangement.Top) > a.RowHandType(arrangement.Middle) {
			risk += foulPenaltyCeiling
		}
	}
	if a.Middle.Full() && a.Bottom.Full() {
		if a.RowHandType(arrangement.Middle) > a.RowHandType(arrangement.Bottom) {
			risk += foulPenaltyCeiling
		}
	}
	if risk > foulPenaltyCeiling {
		risk = foulPenaltyCeiling
	}
	return risk
}
