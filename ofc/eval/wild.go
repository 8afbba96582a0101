package eval

import "github.com/ofcsolver/ofcsolver/ofc/card"

// evaluate5Wild resolves 0, 1, or 2 wildcards in a 5-card hand to the
// substitution producing the strongest HandType. Substitutions are chosen
// structurally in decreasing category order (royal flush down to pair)
// rather than by a 52-way brute force per wild: each category check reasons
// directly over the rank/suit structure of the fixed (non-wild) cards.
func evaluate5Wild(cards [5]card.Card) HandType {
	var fixed []card.Card
	w := 0
	for _, c := range cards {
		if c.IsWild() {
			w++
		} else {
			fixed = append(fixed, c)
		}
	}
	if w == 0 {
		return evaluate5(cards)
	}

	counts, _ := rankHistogram(fixed)

	if ht, ok := tryStraightFlush(fixed, counts, w); ok {
		return ht
	}
	if ht, ok := tryQuads(counts, w); ok {
		return ht
	}
	if ht, ok := tryFullHouse(counts, w); ok {
		return ht
	}
	if ht, ok := tryFlush(fixed, w); ok {
		return ht
	}
	if ht, ok := tryStraight(counts, w); ok {
		return ht
	}
	if ht, ok := tryTrips(counts, w); ok {
		return ht
	}
	if ht, ok := tryTwoPair(counts, w); ok {
		return ht
	}
	return tryPairOrHigh(counts, w)
}

// sameSuit reports whether every card shares a suit, returning it.
func sameSuit(cards []card.Card) (suit int, ok bool) {
	if len(cards) == 0 {
		return 0, true
	}
	suit = cards[0].Suit()
	for _, c := range cards[1:] {
		if c.Suit() != suit {
			return 0, false
		}
	}
	return suit, true
}

// bestWindow finds the highest 5-consecutive-rank window (wheel included,
// ranked last) that contains every rank set in mask. ok is false if no
// window fits. mask's source always indexes one bit per rank of counts, so
// it is already a set of distinct ranks with no duplicate-handling needed.
func bestWindow(mask uint16) (high int, ok bool) {
	for i := 12; i >= 4; i-- {
		win := uint16(0b11111) << uint(i-4)
		if mask&^win == 0 {
			return i, true
		}
	}
	const wheel = 1<<0 | 1<<1 | 1<<2 | 1<<3 | 1<<12
	if mask&^uint16(wheel) == 0 {
		return 3, true
	}
	return 0, false
}

func tryStraightFlush(fixed []card.Card, counts [rankCount]int8, w int) (HandType, bool) {
	if _, ok := sameSuit(fixed); !ok {
		return 0, false
	}
	var mask uint16
	for r, c := range counts {
		if c > 0 {
			mask |= 1 << uint(r)
		}
	}
	high, ok := bestWindow(mask)
	if !ok {
		return 0, false
	}
	if high == 12 {
		return pack(RoyalFlush, [5]int8{12, 0, 0, 0, 0}), true
	}
	return pack(StraightFlush, [5]int8{int8(high), 0, 0, 0, 0}), true
}

func tryQuads(counts [rankCount]int8, w int) (HandType, bool) {
	for r := rankCount - 1; r >= 0; r-- {
		if int(counts[r]) >= 4-w {
			used := 4 - int(counts[r])
			if used < 0 {
				used = 0
			}
			leftoverWild := w - used
			kicker := int8(-1)
			for rr := rankCount - 1; rr >= 0; rr-- {
				if rr == r {
					continue
				}
				if counts[rr] > 0 {
					kicker = int8(rr)
					break
				}
			}
			if kicker < 0 {
				if leftoverWild > 0 {
					if r != 12 {
						kicker = 12
					} else {
						kicker = 11
					}
				} else {
					kicker = 0
				}
			}
			return pack(Quads, [5]int8{int8(r), kicker, 0, 0, 0}), true
		}
	}
	return 0, false
}

func tryFullHouse(counts [rankCount]int8, w int) (HandType, bool) {
	var distinct []int
	for r := rankCount - 1; r >= 0; r-- {
		if counts[r] > 0 {
			distinct = append(distinct, r)
		}
	}
	switch len(distinct) {
	case 1:
		r0 := distinct[0]
		if counts[r0] > 3 {
			return 0, false
		}
		p := 12
		if r0 == 12 {
			p = 11
		}
		return pack(FullHouse, [5]int8{int8(r0), int8(p), 0, 0, 0}), true
	case 2:
		r0, r1 := distinct[0], distinct[1]
		a, b := counts[r0], counts[r1]
		var bestT, bestP int = -1, -1
		if a <= 3 && b <= 2 {
			bestT, bestP = r0, r1
		}
		if b <= 3 && a <= 2 {
			if r1 > bestT {
				bestT, bestP = r1, r0
			}
		}
		if bestT < 0 {
			return 0, false
		}
		return pack(FullHouse, [5]int8{int8(bestT), int8(bestP), 0, 0, 0}), true
	default:
		return 0, false
	}
}

func tryFlush(fixed []card.Card, w int) (HandType, bool) {
	_, ok := sameSuit(fixed)
	if !ok {
		return 0, false
	}
	var used uint16
	var ranks [5]int8
	n := 0
	for _, c := range fixed {
		used |= 1 << uint(c.Rank())
		ranks[n] = int8(c.Rank())
		n++
	}
	for r := rankCount - 1; r >= 0 && n < 5; r-- {
		if used&(1<<uint(r)) == 0 {
			ranks[n] = int8(r)
			n++
			used |= 1 << uint(r)
		}
	}
	// sort descending (small fixed count, insertion sort is fine)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && ranks[j] > ranks[j-1]; j-- {
			ranks[j], ranks[j-1] = ranks[j-1], ranks[j]
		}
	}
	return pack(Flush, ranks), true
}

func tryStraight(counts [rankCount]int8, w int) (HandType, bool) {
	var mask uint16
	for r, c := range counts {
		if c > 1 {
			return 0, false
		}
		if c == 1 {
			mask |= 1 << uint(r)
		}
	}
	high, ok := bestWindow(mask)
	if !ok {
		return 0, false
	}
	return pack(Straight, [5]int8{int8(high), 0, 0, 0, 0}), true
}

func tryTrips(counts [rankCount]int8, w int) (HandType, bool) {
	for r := rankCount - 1; r >= 0; r-- {
		if int(counts[r]) >= 3-w && counts[r] > 0 {
			used := 3 - int(counts[r])
			if used < 0 {
				used = 0
			}
			leftoverWild := w - used
			var kRanks []int8
			for rr := rankCount - 1; rr >= 0 && len(kRanks) < 2; rr-- {
				if rr == r {
					continue
				}
				if counts[rr] > 0 {
					kRanks = append(kRanks, int8(rr))
				}
			}
			for len(kRanks) < 2 && leftoverWild > 0 {
				cand := int8(12)
				for cand == int8(r) || contains8(kRanks, cand) {
					cand--
				}
				kRanks = append(kRanks, cand)
				leftoverWild--
			}
			for len(kRanks) < 2 {
				kRanks = append(kRanks, 0)
			}
			return pack(Trips, [5]int8{int8(r), kRanks[0], kRanks[1], 0, 0}), true
		}
	}
	return 0, false
}

func contains8(xs []int8, v int8) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

type pairCandidate struct {
	rank, cost int
}

func tryTwoPair(counts [rankCount]int8, w int) (HandType, bool) {
	var cands []pairCandidate
	for r := rankCount - 1; r >= 0; r-- {
		switch counts[r] {
		case 2:
			cands = append(cands, pairCandidate{r, 0})
		case 1:
			cands = append(cands, pairCandidate{r, 1})
		}
	}
	// cands is already rank-descending; pick a cheap-first stable selection
	// of two groups within budget w, preferring higher ranks.
	var chosen []pairCandidate
	budget := w
	// first pass: existing pairs (cost 0)
	for _, c := range cands {
		if len(chosen) == 2 {
			break
		}
		if c.cost == 0 {
			chosen = append(chosen, c)
		}
	}
	for _, c := range cands {
		if len(chosen) == 2 {
			break
		}
		if c.cost == 1 && budget > 0 && !containsRank(chosen, c.rank) {
			chosen = append(chosen, c)
			budget--
		}
	}
	if len(chosen) < 2 {
		return 0, false
	}
	if chosen[0].rank < chosen[1].rank {
		chosen[0], chosen[1] = chosen[1], chosen[0]
	}
	var kicker int8 = -1
	for r := rankCount - 1; r >= 0; r-- {
		if r == chosen[0].rank || r == chosen[1].rank {
			continue
		}
		if counts[r] > 0 {
			kicker = int8(r)
			break
		}
	}
	if kicker < 0 {
		kicker = 12
		for kicker == int8(chosen[0].rank) || kicker == int8(chosen[1].rank) {
			kicker--
		}
	}
	return pack(TwoPair, [5]int8{int8(chosen[0].rank), int8(chosen[1].rank), kicker, 0, 0}), true
}

func containsRank(cs []pairCandidate, r int) bool {
	for _, c := range cs {
		if c.rank == r {
			return true
		}
	}
	return false
}

func tryPairOrHigh(counts [rankCount]int8, w int) HandType {
	for r := rankCount - 1; r >= 0; r-- {
		if counts[r] == 1 {
			k := kickers(counts, 1<<uint(r), 3)
			return pack(Pair, [5]int8{int8(r), k[0], k[1], k[2], 0})
		}
	}
	k := kickers(counts, 0, 5)
	return pack(HighCard, [5]int8{k[0], k[1], k[2], k[3], k[4]})
}

// evaluate3Wild resolves wildcards for a 3-card (top row) hand. Only trips,
// pair, and high card are reachable.
func evaluate3Wild(cards [3]card.Card) HandType {
	var fixed []card.Card
	w := 0
	for _, c := range cards {
		if c.IsWild() {
			w++
		} else {
			fixed = append(fixed, c)
		}
	}
	if w == 0 {
		return evaluate3(cards)
	}
	counts, _ := rankHistogram(fixed)
	for r := rankCount - 1; r >= 0; r-- {
		if int(counts[r]) >= 3-w && counts[r] > 0 {
			return pack(Trips, [5]int8{int8(r), 0, 0, 0, 0})
		}
	}
	return evaluate3WildFallback(counts, w)
}

func evaluate3WildFallback(counts [rankCount]int8, w int) HandType {
	// Trips already ruled out by the caller. With w>=1 a pair is always
	// reachable by pairing the highest existing single with a wild.
	for r := rankCount - 1; r >= 0; r-- {
		if counts[r] == 1 {
			k := kickers(counts, 1<<uint(r), 1)
			return pack(Pair, [5]int8{int8(r), k[0], 0, 0, 0})
		}
	}
	// No fixed cards at all (w==3, impossible since the deck has only two
	// wilds) — unreachable in practice, kept for totality.
	return pack(HighCard, [5]int8{12, 11, 10, 0, 0})
}
