package mcts

import (
	"math"

	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/heuristic"
	"github.com/ofcsolver/ofcsolver/ofc/moves"
	"github.com/ofcsolver/ofcsolver/ofc/rng"
	"github.com/ofcsolver/ofcsolver/ofc/score"
)

// pickAction applies the lightweight default policy to an already
// heuristic-ordered action list: argmax (the first entry) with
// probability 1-epsilon, a uniformly random entry otherwise.
func pickAction(actions []moves.Action, rs *rng.Stream, epsilon float64) moves.Action {
	if len(actions) == 1 || epsilon <= 0 {
		return actions[0]
	}
	if rs.Intn(1000) < int(epsilon*1000) {
		return actions[rs.Intn(len(actions))]
	}
	return actions[0]
}

// playoutSelf plays s forward to a complete arrangement using the default
// policy, returning the completed state. ok is false if the generator ever
// produces no legal action, a defensive condition that should not occur
// with a correct move generator.
func playoutSelf(s State, rs *rng.Stream, epsilon float64) (State, bool) {
	cur := s.Clone()
	for !cur.Arrangement.IsComplete() {
		actions := generateActionsFor(cur)
		if len(actions) == 0 {
			return cur, false
		}
		chosen := pickAction(actions, rs, epsilon)
		cur = applyAction(cur, chosen, rs)
	}
	return cur, true
}

// seedKnownOpponent builds a starting arrangement from cards already known
// to belong to the opponent (their public, already-placed cards) instead of
// discarding that progress and dealing a from-scratch hand. Row assignment
// isn't recoverable from a flat card.Set, so each known card is placed into
// whichever open row maximizes the static heuristic, the same greedy
// argmax policy pickAction applies when choosing among generated actions.
func seedKnownOpponent(known, unseen card.Set) arrangement.Arrangement {
	arr := arrangement.New()
	for _, c := range known.Slice() {
		best := arrangement.Top
		bestScore := math.Inf(-1)
		for _, row := range allRows {
			if !arr.CanPlace(row) {
				continue
			}
			candidate := arr.Clone()
			candidate.Place(c, row)
			if s := heuristic.Score(candidate, unseen); s > bestScore {
				bestScore, best = s, row
			}
		}
		arr.Place(c, best)
	}
	return arr
}

var allRows = [3]arrangement.RowName{arrangement.Top, arrangement.Middle, arrangement.Bottom}

// playoutOpponent continues the opponent's hand from their already-known
// placed cards (seeded via seedKnownOpponent) through the remaining streets
// starting at fromStreet, dealing from remaining and applying the same
// default policy used for self. This keeps the simulated opponent a
// continuation of their real progress instead of an unrelated fresh deal.
func playoutOpponent(remaining card.Set, known card.Set, fromStreet Street, rs *rng.Stream, epsilon float64) (arrangement.Arrangement, bool) {
	unseen := remaining
	arr := seedKnownOpponent(known, unseen)

	start := int(fromStreet)
	if arr.IsComplete() {
		return arr, true
	}
	if start < 1 {
		// No opener progress is known yet; deal and place the five-card
		// opener before continuing with the 3-card streets below.
		dealt5 := rs.Sample(unseen, 5)
		var d5 [5]card.Card
		copy(d5[:], dealt5)
		actions := moves.GenerateOpener(d5, unseen, 0)
		if len(actions) == 0 {
			return arr, false
		}
		chosen := pickAction(actions, rs, epsilon)
		arr = chosen.Apply(arr)
		unseen = unseen.Without(cardSetOf(dealt5))
		start = 1
	}

	for street := start; street <= int(MaxStreet); street++ {
		dealt3 := rs.Sample(unseen, 3)
		var d3 [3]card.Card
		copy(d3[:], dealt3)
		acts := moves.GenerateStreet(arr, d3, unseen)
		if len(acts) == 0 {
			return arr, false
		}
		ch := pickAction(acts, rs, epsilon)
		arr = ch.Apply(arr)
		unseen = unseen.Without(cardSetOf(dealt3))
	}
	return arr, true
}

func cardSetOf(cards []card.Card) card.Set {
	var s card.Set
	for _, c := range cards {
		s = s.Insert(c)
	}
	return s
}

// simulateFromLeaf runs the full default-policy playout from leafState to a
// terminal self arrangement, completes a sampled opponent arrangement, and
// scores the matchup. ok is false on the defensive failure path (dropped
// playout, no statistics update).
func simulateFromLeaf(leafState State, rs *rng.Stream, opts Options, memo *Memo) (value float64, ok bool) {
	if v, _, hit := memo.Lookup(leafState); hit {
		return v, true
	}

	selfFinal, ok := playoutSelf(leafState, rs, opts.Epsilon)
	if !ok {
		return 0, false
	}
	// The opponent resumes from however many streets leafState had already
	// played, continuing from their own known placed cards rather than a
	// from-scratch deal.
	oppArr, ok := playoutOpponent(selfFinal.Unseen, leafState.KnownOpponent, leafState.Street, rs, opts.Epsilon)
	if !ok {
		return 0, false
	}
	selfScore, _ := score.Matchup(selfFinal.Arrangement, oppArr, opts.FoulPenalty)
	value = float64(selfScore)
	memo.Record(leafState, value)
	return value, true
}
