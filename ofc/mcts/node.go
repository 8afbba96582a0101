package mcts

import (
	"math"
	"sync"

	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/moves"
	"github.com/ofcsolver/ofcsolver/ofc/rng"
)

// Node is one point in the search tree: the state reached by applying
// actionFromParent to parent.state, the running visit count N and
// cumulative value W, the actions not yet expanded into children (already
// in ofc/moves heuristic order), and the resulting children. A single
// mutex guards every mutable field; in root-parallel mode trees are never
// shared across workers so the lock is uncontended, and in tree-parallel
// mode it is what makes concurrent Select/Expand/Backpropagate safe.
//
// State machine: Created (no children, untried non-empty) -> Expanded-once
// (first child created) -> Expanded-fully (untried empty) -> Terminal.
// Transitions are monotone; a Terminal node is never expanded or
// simulated again.
type Node struct {
	mu sync.Mutex

	parent           *Node
	actionFromParent moves.Action
	state            State

	n           int64
	w           float64
	virtualLoss int64

	untried  []moves.Action
	children []*Node
	terminal bool
}

// NewRoot builds the root node for state, already populated with its
// untried actions.
func NewRoot(state State) *Node {
	return newNode(nil, moves.Action{}, state)
}

func newNode(parent *Node, action moves.Action, state State) *Node {
	return &Node{
		parent:           parent,
		actionFromParent: action,
		state:            state,
		untried:          generateActionsFor(state),
		terminal:         state.IsTerminal(),
	}
}

// generateActionsFor dispatches to the opener or street generator
// depending on state.Street, already ordered by heuristic score.
func generateActionsFor(s State) []moves.Action {
	if s.IsTerminal() {
		return nil
	}
	if s.Street == StreetOpener {
		var d [5]card.Card
		copy(d[:], s.Dealt)
		return moves.GenerateOpener(d, s.Unseen, 0)
	}
	var d [3]card.Card
	copy(d[:], s.Dealt)
	return moves.GenerateStreet(s.Arrangement, d, s.Unseen)
}

func (n *Node) isTerminal() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.terminal
}

func (n *Node) visits() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.n
}

// Children returns a snapshot of n's children slice, safe to range over.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Stats returns n's current (N, W) under lock.
func (n *Node) Stats() (visits int64, value float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.n, n.w
}

// ActionFromParent returns the action that produced n from its parent.
func (n *Node) ActionFromParent() moves.Action {
	return n.actionFromParent
}

// applyAction advances state by action: it applies the placement, removes
// the dealt cards from unseen, and (unless the resulting arrangement is
// complete) samples the next street's dealt cards using rs. Folding the
// chance draw into expansion keeps the tree over decision points only,
// rather than adding an explicit layer of chance nodes.
func applyAction(s State, action moves.Action, rs *rng.Stream) State {
	next := s.Clone()
	next.Arrangement = action.Apply(s.Arrangement)
	if action.Kind == moves.KindStreet {
		next.Discarded = next.Discarded.Insert(action.Discard)
	}
	for _, c := range s.Dealt {
		next.Unseen = next.Unseen.Remove(c)
	}
	next.Street++
	if next.Arrangement.IsComplete() {
		next.Dealt = nil
		return next
	}
	next.Dealt = rs.Sample(next.Unseen, 3)
	return next
}

// expand pops one untried action from n (already in heuristic order),
// applies it, and appends the resulting child. It returns n unchanged if n
// is terminal or already fully expanded.
func expand(n *Node, rs *rng.Stream) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.terminal || len(n.untried) == 0 {
		return n
	}
	action := n.untried[0]
	n.untried = n.untried[1:]
	child := newNode(n, action, applyAction(n.state, action, rs))
	n.children = append(n.children, child)
	return child
}

// widenLimit returns ceil(k * n^alpha), the progressive-widening cap on
// how many children a node may have at a given visit count.
func widenLimit(visits int64, k, alpha float64) int {
	if visits < 1 {
		visits = 1
	}
	limit := int(math.Ceil(k * math.Pow(float64(visits), alpha)))
	if limit < 1 {
		limit = 1
	}
	return limit
}

// selectChild returns n's child with the highest UCT value, counting
// in-flight virtual loss against N so concurrent workers spread out.
// Unvisited children (N+virtualLoss == 0) are always preferred.
func selectChild(n *Node, children []*Node, explorationC float64) *Node {
	parentN := n.visits()
	var best *Node
	bestScore := math.Inf(-1)
	for _, ch := range children {
		ch.mu.Lock()
		nn := ch.n + ch.virtualLoss
		var s float64
		if nn == 0 {
			s = math.Inf(1)
		} else {
			exploit := ch.w / float64(nn)
			s = exploit + explorationC*math.Sqrt(math.Log(float64(parentN+1))/float64(nn))
		}
		ch.mu.Unlock()
		if s > bestScore {
			bestScore = s
			best = ch
		}
	}
	return best
}

// descend walks from root to a leaf ready for expansion (terminal, or has
// untried actions not yet exhausted by progressive widening), applying
// virtual loss to every child it passes through when useVirtualLoss is
// set. It returns the leaf and the full path from root to leaf.
func descend(root *Node, opts Options, useVirtualLoss bool) (*Node, []*Node) {
	path := []*Node{root}
	cur := root
	for {
		cur.mu.Lock()
		terminal := cur.terminal
		nUntried := len(cur.untried)
		children := make([]*Node, len(cur.children))
		copy(children, cur.children)
		visits := cur.n
		cur.mu.Unlock()

		if terminal {
			return cur, path
		}

		limit := len(children) + nUntried
		if opts.ProgressiveWidening {
			limit = widenLimit(visits, opts.WideningK, opts.WideningAlpha)
		}
		if nUntried > 0 && len(children) < limit {
			return cur, path
		}
		if len(children) == 0 {
			return cur, path
		}

		next := selectChild(cur, children, opts.ExplorationC)
		if next == nil {
			return cur, path
		}
		if useVirtualLoss {
			next.mu.Lock()
			next.virtualLoss += opts.VirtualLoss
			next.mu.Unlock()
		}
		path = append(path, next)
		cur = next
	}
}

// backpropagate adds value to N and W on every node in path (root-player
// perspective throughout) and, when useVirtualLoss is set, undoes the
// virtual loss applied to every non-root node during descent.
func backpropagate(path []*Node, value float64, virtualLoss int64, useVirtualLoss bool) {
	for i, n := range path {
		n.mu.Lock()
		n.n++
		n.w += value
		if useVirtualLoss && i > 0 {
			n.virtualLoss -= virtualLoss
		}
		n.mu.Unlock()
	}
}

// revertVirtualLoss undoes the virtual loss applied along path without
// recording a playout, used when a playout is dropped as a defensive
// failure.
func revertVirtualLoss(path []*Node, virtualLoss int64) {
	for i, n := range path {
		if i == 0 {
			continue
		}
		n.mu.Lock()
		n.virtualLoss -= virtualLoss
		n.mu.Unlock()
	}
}
