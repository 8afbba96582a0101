// Package arrangement models a single player's three-row Pineapple OFC
// placement: top (3 cards), middle (5 cards), bottom (5 cards). It owns the
// foul check and the royalty table, which are built once at package init and
// read-only thereafter.
package arrangement

import (
	"fmt"

	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/eval"
)

// Row is one of the three placement rows. Cards never exceeds Capacity.
type Row struct {
	Cards    []card.Card
	Capacity int
}

// Full reports whether the row has no open slots.
func (r Row) Full() bool {
	return len(r.Cards) >= r.Capacity
}

// Set returns the row's cards as a card.Set.
func (r Row) Set() card.Set {
	var s card.Set
	for _, c := range r.Cards {
		s = s.Insert(c)
	}
	return s
}

// NewTop, NewMiddle, NewBottom build empty rows of the correct capacity.
func NewTop() Row    { return Row{Capacity: 3} }
func NewMiddle() Row { return Row{Capacity: 5} }
func NewBottom() Row { return Row{Capacity: 5} }

// RowName identifies one of the three rows, used as an index into royalty
// tables and for CanPlace/Place's target selection.
type RowName uint8

const (
	Top RowName = iota
	Middle
	Bottom
)

func (n RowName) String() string {
	switch n {
	case Top:
		return "top"
	case Middle:
		return "middle"
	case Bottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Arrangement is a player's full three-row board, possibly partial.
type Arrangement struct {
	Top    Row
	Middle Row
	Bottom Row
}

// New returns an empty arrangement with correctly sized rows.
func New() Arrangement {
	return Arrangement{Top: NewTop(), Middle: NewMiddle(), Bottom: NewBottom()}
}

func (a *Arrangement) row(n RowName) *Row {
	switch n {
	case Top:
		return &a.Top
	case Middle:
		return &a.Middle
	case Bottom:
		return &a.Bottom
	default:
		panic(fmt.Sprintf("arrangement: invalid row %d", n))
	}
}

// CanPlace reports whether c can be placed into row n: the row must still
// have an open slot. Foul-safety is not checked here; foul is only
// meaningful once the arrangement is complete.
func (a Arrangement) CanPlace(n RowName) bool {
	return !a.row(n).Full()
}

// Place appends c to row n. Callers must check CanPlace first; Place panics
// if the row is already full.
func (a *Arrangement) Place(c card.Card, n RowName) {
	r := a.row(n)
	if r.Full() {
		panic(fmt.Sprintf("arrangement: row %s is full", n))
	}
	r.Cards = append(r.Cards, c)
}

// IsComplete reports whether all three rows are full.
func (a Arrangement) IsComplete() bool {
	return a.Top.Full() && a.Middle.Full() && a.Bottom.Full()
}

// RowHandType evaluates row n. The row must be full.
func (a Arrangement) RowHandType(n RowName) eval.HandType {
	r := a.row(n)
	if !r.Full() {
		panic(fmt.Sprintf("arrangement: row %s is not full", n))
	}
	return eval.Evaluate(r.Cards)
}

// IsFouled reports whether a completed arrangement violates
// bottom >= middle >= top. The arrangement must be complete.
func (a Arrangement) IsFouled() bool {
	if !a.IsComplete() {
		panic("arrangement: IsFouled requires a complete arrangement")
	}
	top := a.RowHandType(Top)
	mid := a.RowHandType(Middle)
	bot := a.RowHandType(Bottom)
	return bot < mid || mid < top
}

// Royalty tables, built once at package init and read-only afterward, per
// the fixed constants of the royalty schedule: top row pair-66..AA scores
// 1..9 and trips-of-r scores 10+(r-2); middle and bottom score flat bonuses
// per category, zero below the category floor named for that row.
var (
	topPairRoyalty  [card.NumRanks]int
	topTripsRoyalty [card.NumRanks]int
	middleRoyalty   [10]int
	bottomRoyalty   [10]int
)

func init() {
	// Pair of sixes (rank index 4) through pair of aces (rank index 12)
	// score 1 through 9; anything below 66 scores 0.
	for r := 4; r < card.NumRanks; r++ {
		topPairRoyalty[r] = r - 3
	}
	for r := 0; r < card.NumRanks; r++ {
		topTripsRoyalty[r] = 10 + r
	}
	middleRoyalty[eval.Trips] = 2
	middleRoyalty[eval.Straight] = 4
	middleRoyalty[eval.Flush] = 8
	middleRoyalty[eval.FullHouse] = 12
	middleRoyalty[eval.Quads] = 20
	middleRoyalty[eval.StraightFlush] = 30
	middleRoyalty[eval.RoyalFlush] = 50

	bottomRoyalty[eval.Straight] = 2
	bottomRoyalty[eval.Flush] = 4
	bottomRoyalty[eval.FullHouse] = 6
	bottomRoyalty[eval.Quads] = 10
	bottomRoyalty[eval.StraightFlush] = 15
	bottomRoyalty[eval.RoyalFlush] = 25
}

// topRoyalty returns the royalty for a full top-row HandType.
func topRoyalty(h eval.HandType) int {
	switch h.Category() {
	case eval.Pair:
		return topPairRoyalty[h.Tiebreak()[0]]
	case eval.Trips:
		return topTripsRoyalty[h.Tiebreak()[0]]
	default:
		return 0
	}
}

// Royalties returns the total royalty score for a complete arrangement, or
// 0 if it is fouled.
func (a Arrangement) Royalties() int {
	if !a.IsComplete() {
		panic("arrangement: Royalties requires a complete arrangement")
	}
	if a.IsFouled() {
		return 0
	}
	top := topRoyalty(a.RowHandType(Top))
	mid := middleRoyalty[a.RowHandType(Middle).Category()]
	bot := bottomRoyalty[a.RowHandType(Bottom).Category()]
	return top + mid + bot
}

// FantasyLandQualifies reports whether the arrangement enters Fantasy Land:
// non-fouled and a top row of pair-QQ or stronger.
func (a Arrangement) FantasyLandQualifies() bool {
	if !a.IsComplete() || a.IsFouled() {
		return false
	}
	top := a.RowHandType(Top)
	switch top.Category() {
	case eval.Trips:
		return true
	case eval.Pair:
		return top.Tiebreak()[0] >= rankQ
	default:
		return false
	}
}

const rankQ = 10 // 2=0 .. A=12, so Q=10

// FantasyLandRetained reports whether a Fantasy-Land-qualifying arrangement
// also retains it for the following hand: trips on top, or quads-or-better
// in middle or bottom. This is a scoring signal only; the core does not
// simulate Fantasy Land gameplay.
func (a Arrangement) FantasyLandRetained() bool {
	if !a.FantasyLandQualifies() {
		return false
	}
	if a.RowHandType(Top).Category() == eval.Trips {
		return true
	}
	return a.RowHandType(Middle).Category() >= eval.Quads ||
		a.RowHandType(Bottom).Category() >= eval.Quads
}

// Clone returns a deep copy of a, safe to mutate independently.
func (a Arrangement) Clone() Arrangement {
	return Arrangement{
		Top:    Row{Cards: append([]card.Card(nil), a.Top.Cards...), Capacity: a.Top.Capacity},
		Middle: Row{Cards: append([]card.Card(nil), a.Middle.Cards...), Capacity: a.Middle.Capacity},
		Bottom: Row{Cards: append([]card.Card(nil), a.Bottom.Cards...), Capacity: a.Bottom.Capacity},
	}
}
