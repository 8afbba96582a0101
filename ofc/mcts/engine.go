package mcts

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/ofcsolver/ofcsolver/ofc/clock"
	"github.com/ofcsolver/ofcsolver/ofc/moves"
	"github.com/ofcsolver/ofcsolver/ofc/rng"
	"golang.org/x/sync/errgroup"
)

// Mode selects the parallelism strategy.
type Mode int

const (
	// RootParallel runs an independent tree per worker; results are
	// merged by summing (N, W) per root child once every worker stops.
	RootParallel Mode = iota
	// TreeParallel runs every worker against one shared tree, using
	// virtual loss during selection to spread workers across branches.
	TreeParallel
)

// Options configures one Engine.Run call. Values follow spec.md's stated
// defaults (c ~= sqrt(2), k~=2, alpha~=0.5).
type Options struct {
	ExplorationC        float64
	Epsilon             float64
	FoulPenalty         int
	ProgressiveWidening bool
	WideningK           float64
	WideningAlpha       float64
	VirtualLoss         int64
	NMin                int64
	MemoCapacity        int
	Workers             int
}

// DefaultOptions returns the engine defaults named in spec.md.
func DefaultOptions() Options {
	return Options{
		ExplorationC:        math.Sqrt2,
		Epsilon:             0.1,
		FoulPenalty:         6,
		ProgressiveWidening: true,
		WideningK:           2,
		WideningAlpha:       0.5,
		VirtualLoss:         3,
		NMin:                1,
		MemoCapacity:        1 << 16,
		Workers:             4,
	}
}

// Budget bounds one search: a wall-clock deadline, a simulation count cap,
// or both, whichever is hit first, plus a cooperative cancellation flag.
type Budget struct {
	Deadline       time.Time
	MaxSimulations int64
	Cancel         *atomic.Bool
	Clock          clock.Clock
}

func (b Budget) expired(simCount int64) bool {
	if b.Cancel != nil && b.Cancel.Load() {
		return true
	}
	if b.MaxSimulations > 0 && simCount >= b.MaxSimulations {
		return true
	}
	if !b.Deadline.IsZero() {
		now := time.Now()
		if b.Clock != nil {
			now = b.Clock.Now()
		}
		if !now.Before(b.Deadline) {
			return true
		}
	}
	return false
}

// Stats summarizes one completed search.
type Stats struct {
	Value       float64
	Simulations int64
	Confidence  float64
	Elapsed     time.Duration
}

// Engine runs MCTS over a root State and returns the best root action.
type Engine struct {
	Options Options
	Mode    Mode
}

// NewEngine builds an Engine with opts, defaulting Workers to 1 if unset.
func NewEngine(opts Options, mode Mode) Engine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return Engine{Options: opts, Mode: mode}
}

// Run searches from root under budget, seeded deterministically so that a
// fixed (seed, workers) reproduces the same decision. It returns the best
// root action by the termination rule of spec.md §4.7: highest visit
// count, ties broken by higher mean value, then by move-generator order.
func (e Engine) Run(ctx context.Context, root State, budget Budget, seed int64) (moves.Action, Stats, error) {
	if root.IsTerminal() {
		return moves.Action{}, Stats{}, fmt.Errorf("mcts: root state is already terminal")
	}
	start := time.Now()
	if budget.Clock != nil {
		start = budget.Clock.Now()
	}

	var result childResult
	var simCount int64
	var err error
	switch e.Mode {
	case TreeParallel:
		result, simCount, err = runTreeParallel(ctx, root, e.Options, budget, seed)
	default:
		result, simCount, err = runRootParallel(ctx, root, e.Options, budget, seed)
	}
	if err != nil {
		return moves.Action{}, Stats{}, err
	}

	elapsed := time.Since(start)
	if budget.Clock != nil {
		elapsed = budget.Clock.Now().Sub(start)
	}

	confidence := 0.0
	if simCount > 0 {
		confidence = float64(result.n) / float64(simCount)
	}
	mean := 0.0
	if result.n > 0 {
		mean = result.w / float64(result.n)
	}
	return result.action, Stats{
		Value:       mean,
		Simulations: simCount,
		Confidence:  confidence,
		Elapsed:     elapsed,
	}, nil
}

// childResult is the merged (action, N, W) for one root child, used by
// both parallel modes to pick the winning action.
type childResult struct {
	action moves.Action
	n      int64
	w      float64
}

func bestChild(results []childResult, nMin int64) childResult {
	var best childResult
	bestSet := false
	for _, r := range results {
		if r.n < nMin {
			continue
		}
		if !bestSet {
			best, bestSet = r, true
			continue
		}
		if r.n > best.n {
			best = r
			continue
		}
		if r.n == best.n {
			rMean := safeDiv(r.w, r.n)
			bMean := safeDiv(best.w, best.n)
			if rMean > bMean {
				best = r
			}
		}
	}
	if !bestSet && len(results) > 0 {
		best = results[0]
	}
	return best
}

func safeDiv(w float64, n int64) float64 {
	if n == 0 {
		return 0
	}
	return w / float64(n)
}

// runRootParallel builds one independent tree per worker and merges each
// root child's (N, W) by summing, since every worker's root is generated
// from the identical root state and therefore exposes bit-identical
// actions in the same order. All workers share one simulation counter so
// Budget.MaxSimulations bounds the total work across every tree, not each
// tree independently.
func runRootParallel(ctx context.Context, root State, opts Options, budget Budget, seed int64) (childResult, int64, error) {
	g, gctx := errgroup.WithContext(ctx)
	perWorker := make([][]childResult, opts.Workers)
	var totalSims int64

	rootSeed := rng.New(seed)
	for w := 0; w < opts.Workers; w++ {
		w := w
		workerRNG := rng.DeriveWorker(rootSeed, w)
		g.Go(func() error {
			tree := NewRoot(root)
			memo := NewMemo(opts.MemoCapacity)
			for !budget.expired(atomic.LoadInt64(&totalSims)) {
				select {
				case <-gctx.Done():
					perWorker[w] = collectChildren(tree)
					return nil
				default:
				}
				runOneSimulation(tree, workerRNG, opts, memo, false)
				atomic.AddInt64(&totalSims, 1)
			}
			perWorker[w] = collectChildren(tree)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return childResult{}, 0, err
	}

	merged := map[moves.Action]*childResult{}
	var order []moves.Action
	for _, children := range perWorker {
		for _, c := range children {
			if _, ok := merged[c.action]; !ok {
				merged[c.action] = &childResult{action: c.action}
				order = append(order, c.action)
			}
			merged[c.action].n += c.n
			merged[c.action].w += c.w
		}
	}
	results := make([]childResult, 0, len(order))
	for _, a := range order {
		results = append(results, *merged[a])
	}
	return bestChild(results, opts.NMin), totalSims, nil
}

func collectChildren(tree *Node) []childResult {
	var out []childResult
	for _, ch := range tree.Children() {
		n, w := ch.Stats()
		out = append(out, childResult{action: ch.ActionFromParent(), n: n, w: w})
	}
	return out
}

// runTreeParallel runs every worker against one shared tree with virtual
// loss during selection. All workers share one simulation counter so
// Budget.MaxSimulations bounds the total work across every worker, not
// each worker independently.
func runTreeParallel(ctx context.Context, root State, opts Options, budget Budget, seed int64) (childResult, int64, error) {
	tree := NewRoot(root)
	memo := NewMemo(opts.MemoCapacity)
	g, gctx := errgroup.WithContext(ctx)
	var totalSims int64

	rootSeed := rng.New(seed)
	for w := 0; w < opts.Workers; w++ {
		w := w
		workerRNG := rng.DeriveWorker(rootSeed, w)
		g.Go(func() error {
			for !budget.expired(atomic.LoadInt64(&totalSims)) {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				runOneSimulation(tree, workerRNG, opts, memo, true)
				atomic.AddInt64(&totalSims, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return childResult{}, 0, err
	}

	results := collectChildren(tree)
	return bestChild(results, opts.NMin), totalSims, nil
}

// runOneSimulation performs one select-expand-simulate-backpropagate
// cycle. A dropped (defensive-failure) playout reverts any virtual loss it
// applied and leaves statistics untouched.
func runOneSimulation(tree *Node, rs *rng.Stream, opts Options, memo *Memo, useVirtualLoss bool) {
	leaf, path := descend(tree, opts, useVirtualLoss)
	if !leaf.isTerminal() {
		child := expand(leaf, rs)
		if child != leaf {
			path = append(path, child)
			leaf = child
		}
	}
	value, ok := simulateFromLeaf(leaf.state, rs, opts, memo)
	if !ok {
		if useVirtualLoss {
			revertVirtualLoss(path, opts.VirtualLoss)
		}
		return
	}
	backpropagate(path, value, opts.VirtualLoss, useVirtualLoss)
}
