// Package score turns completed arrangements into numeric outcomes: a
// single-sided self-evaluation used when no opponent model exists, and a
// head-to-head matchup used once MCTS playouts have generated a concrete
// opponent arrangement.
package score

import "github.com/ofcsolver/ofcsolver/ofc/arrangement"

// Scorer compares self to opp and returns their respective scores, as a
// function value rather than a type hierarchy. mcts.Engine has no Scorer
// field: its playouts call Matchup directly, so the scoring rules there
// cannot be swapped.
type Scorer func(self, opp arrangement.Arrangement) (selfScore, oppScore int)

// SelfScore evaluates self in isolation: royalties minus a foul penalty when
// fouled. Used as a terminal score when no opponent arrangement is
// available.
func SelfScore(self arrangement.Arrangement, foulPenalty int) int {
	if self.IsFouled() {
		return -foulPenalty
	}
	return self.Royalties()
}

// rowWinBonus is the per-row score awarded to the winner of a single row
// comparison.
const rowWinBonus = 1

// scoopBonus is the extra score awarded for winning all three rows. This
// resolves an Open Question left unspecified by the distilled rules: +3 is
// the standard OFC scoop convention.
const scoopBonus = 3

var allRows = [3]arrangement.RowName{arrangement.Top, arrangement.Middle, arrangement.Bottom}

// Matchup scores self against opp row by row: the winner of each row scores
// rowWinBonus, a clean sweep adds scoopBonus, and the royalty totals are
// added to the winner and subtracted from the loser. A fouled side loses
// every row comparison outright (the other side scoops) and forfeits its
// own royalties to zero, but the non-fouling side's royalties still count
// in full against that zero — foulPenalty is charged to the fouling side
// on top of, not instead of, that row/royalty computation.
func Matchup(self, opp arrangement.Arrangement, foulPenalty int) (selfScore, oppScore int) {
	selfFouled := self.IsFouled()
	oppFouled := opp.IsFouled()

	if selfFouled && oppFouled {
		return 0, 0
	}

	selfWins, oppWins := 0, 0
	switch {
	case selfFouled:
		oppWins = 3
	case oppFouled:
		selfWins = 3
	default:
		for _, row := range allRows {
			sh := self.RowHandType(row)
			oh := opp.RowHandType(row)
			switch {
			case sh > oh:
				selfWins++
			case oh > sh:
				oppWins++
			}
		}
	}
	selfScore += selfWins * rowWinBonus
	oppScore += oppWins * rowWinBonus
	switch {
	case selfWins == 3:
		selfScore += scoopBonus
	case oppWins == 3:
		oppScore += scoopBonus
	}

	selfRoyalties, oppRoyalties := 0, 0
	if selfFouled {
		selfScore -= foulPenalty
	} else {
		selfRoyalties = self.Royalties()
	}
	if oppFouled {
		oppScore -= foulPenalty
	} else {
		oppRoyalties = opp.Royalties()
	}
	selfScore += selfRoyalties - oppRoyalties
	oppScore += oppRoyalties - selfRoyalties
	return selfScore, oppScore
}
