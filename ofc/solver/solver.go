// Package solver is the street-aware facade (C8): it dispatches to the
// opener or per-street move generator, runs MCTS over the resulting
// candidates, and wraps the result in a Decision. It is the only package
// meant to be imported by a host process; everything else in ofc/ is an
// implementation detail reached through here.
package solver

import (
	"context"
	"time"

	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/heuristic"
	"github.com/ofcsolver/ofcsolver/ofc/mcts"
	"github.com/ofcsolver/ofcsolver/ofc/moves"
	"github.com/rs/zerolog"
)

// State and Street are re-exported from ofc/mcts: the facade's input shape
// is identical to the search engine's, since the engine is what actually
// consumes it.
type (
	State  = mcts.State
	Street = mcts.Street
)

// Budget is re-exported from ofc/mcts.
type Budget = mcts.Budget

// Options configures one Solve or Analyze call: thread count, exploration
// constant, parallelism mode, epsilon-greedy rate, and the deterministic
// seed, plus the opener candidate width used at street 0.
type Options struct {
	Threads              int
	ExplorationC         float64
	Parallelism          mcts.Mode
	EpsGreedy            float64
	ProgressiveWidening  bool
	TranspositionMemo    bool
	MemoCapacity         int
	RNGSeed              int64
	OpenerCandidateWidth int
	FoulPenalty          int
}

// DefaultOptions returns sensible production defaults, grounded on
// mcts.DefaultOptions with the facade-specific fields filled in.
func DefaultOptions() Options {
	eng := mcts.DefaultOptions()
	return Options{
		Threads:              4,
		ExplorationC:         eng.ExplorationC,
		Parallelism:          mcts.RootParallel,
		EpsGreedy:            eng.Epsilon,
		ProgressiveWidening:  true,
		TranspositionMemo:    true,
		MemoCapacity:         eng.MemoCapacity,
		RNGSeed:              1,
		OpenerCandidateWidth: 30,
		FoulPenalty:          eng.FoulPenalty,
	}
}

func (o Options) engineOptions() mcts.Options {
	memoCap := o.MemoCapacity
	if !o.TranspositionMemo {
		memoCap = 0
	}
	return mcts.Options{
		ExplorationC:        o.ExplorationC,
		Epsilon:             o.EpsGreedy,
		FoulPenalty:         o.FoulPenalty,
		ProgressiveWidening: o.ProgressiveWidening,
		WideningK:           2,
		WideningAlpha:       0.5,
		VirtualLoss:         3,
		NMin:                1,
		MemoCapacity:        memoCap,
		Workers:             o.Threads,
	}
}

// TopAction is one ranked entry of Decision.TopActions or
// Summary.TopActions.
type TopAction struct {
	Action moves.Action
	Value  float64
	Visits int64
}

// Decision is solve's result: the chosen action plus enough of the search
// trace for a caller to judge confidence or degrade gracefully.
type Decision struct {
	Action           moves.Action
	ExpectedScore    float64
	Confidence       float64
	SimulationsRun   int64
	Elapsed          time.Duration
	Complete         bool
	TopActions       []TopAction
	DegradedToSingle bool
}

// Summary is analyze's result: a heuristic snapshot with no MCTS involved.
type Summary struct {
	PerRowType             map[arrangement.RowName]string
	CurrentRoyalties       int
	FoulProbability        float64
	FantasyLandProbability float64
	TopActions             []TopAction
}

// Solver runs Solve and Analyze. It holds no mutable state beyond a
// logger; every call is independently parameterized by its own Options.
type Solver struct {
	Log zerolog.Logger
}

// New builds a Solver logging through log (pass zerolog.Nop() to silence).
func New(log zerolog.Logger) *Solver {
	return &Solver{Log: log}
}

// Solve dispatches on state.Street: street 0 calls the opener generator,
// streets 1..4 call the three-card generator; either way the candidates
// are then searched with MCTS under budget and options.
func (s *Solver) Solve(ctx context.Context, state State, budget Budget, opts Options) (Decision, error) {
	if err := validateState(state); err != nil {
		return Decision{}, err
	}

	eo := opts.engineOptions()
	degraded := false
	if eo.Workers <= 0 {
		// Degradation per the engine's resource-limit policy: an engine
		// that cannot stand up its worker pool falls back to
		// single-threaded root-only search rather than failing Solve.
		eo.Workers = 1
		degraded = true
	}
	engine := mcts.NewEngine(eo, opts.Parallelism)
	action, stats, err := engine.Run(ctx, state, budget, opts.RNGSeed)
	if err != nil {
		return Decision{}, inconsistentState("%v", err)
	}

	complete := stats.Simulations > 0 && (budget.Cancel == nil || !budget.Cancel.Load())
	s.Log.Debug().
		Int("street", int(state.Street)).
		Int64("simulations", stats.Simulations).
		Float64("value", stats.Value).
		Float64("confidence", stats.Confidence).
		Dur("elapsed", stats.Elapsed).
		Msg("solve finished")

	return Decision{
		Action:           action,
		ExpectedScore:    stats.Value,
		Confidence:       stats.Confidence,
		SimulationsRun:   stats.Simulations,
		Elapsed:          stats.Elapsed,
		Complete:         complete,
		DegradedToSingle: degraded,
	}, nil
}

// Analyze returns a heuristic-only snapshot of state: current row
// categories, royalties, foul and Fantasy-Land probabilities (estimated
// rather than simulated), and a top-N action list by static heuristic
// score. No MCTS is run.
func (s *Solver) Analyze(state State) (Summary, error) {
	if err := validateState(state); err != nil {
		return Summary{}, err
	}

	perRow := map[arrangement.RowName]string{}
	for _, row := range []arrangement.RowName{arrangement.Top, arrangement.Middle, arrangement.Bottom} {
		r := rowOf(state.Arrangement, row)
		if r.Full() {
			perRow[row] = state.Arrangement.RowHandType(row).String()
		} else {
			perRow[row] = "incomplete"
		}
	}

	royalties := 0
	foulProb := 0.0
	flProb := 0.0
	if state.Arrangement.IsComplete() {
		royalties = state.Arrangement.Royalties()
		if state.Arrangement.IsFouled() {
			foulProb = 1
		}
		if state.Arrangement.FantasyLandQualifies() {
			flProb = 1
		}
	} else {
		foulProb = heuristic.FoulRisk(state.Arrangement) / 10
	}

	actions := generateActions(state)
	top := make([]TopAction, 0, len(actions))
	for _, a := range actions {
		top = append(top, TopAction{Action: a, Value: a.Score})
	}

	return Summary{
		PerRowType:             perRow,
		CurrentRoyalties:       royalties,
		FoulProbability:        foulProb,
		FantasyLandProbability: flProb,
		TopActions:             top,
	}, nil
}

func rowOf(a arrangement.Arrangement, n arrangement.RowName) arrangement.Row {
	switch n {
	case arrangement.Top:
		return a.Top
	case arrangement.Middle:
		return a.Middle
	default:
		return a.Bottom
	}
}

func generateActions(state State) []moves.Action {
	if state.Street == mcts.StreetOpener {
		var d [5]card.Card
		copy(d[:], state.Dealt)
		return moves.GenerateOpener(d, state.Unseen, 0)
	}
	var d [3]card.Card
	copy(d[:], state.Dealt)
	return moves.GenerateStreet(state.Arrangement, d, state.Unseen)
}

// validateState checks the invariants named in the error-handling design:
// self/opponent/discarded/unseen must be pairwise disjoint and their union
// must be the full deck, and the dealt-card count must match the street.
func validateState(state State) error {
	sets := []card.Set{
		state.Arrangement.Top.Set(),
		state.Arrangement.Middle.Set(),
		state.Arrangement.Bottom.Set(),
		state.Discarded,
		state.KnownOpponent,
		state.Unseen,
	}
	var union card.Set
	for _, s := range sets {
		if union.Intersect(s) != 0 {
			return invalidInput("card appears in more than one of self/opponent/discard/unseen")
		}
		union = union.Union(s)
	}
	if union != card.FullDeck {
		return inconsistentState("known-consumed ∪ unseen does not equal the full deck")
	}

	wantDealt := 3
	if state.Street == mcts.StreetOpener {
		wantDealt = 5
	}
	if len(state.Dealt) != 0 && len(state.Dealt) != wantDealt {
		return invalidInput("street %d expects %d dealt cards, got %d", state.Street, wantDealt, len(state.Dealt))
	}
	for _, c := range state.Dealt {
		if !state.Unseen.Contains(c) {
			return exhaustedDeck("dealt card %s is not in unseen", c)
		}
	}
	if state.Street < mcts.StreetOpener || state.Street > mcts.MaxStreet {
		return invalidInput("street %d out of range 0..%d", state.Street, mcts.MaxStreet)
	}
	return nil
}
