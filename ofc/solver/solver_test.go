package solver

import (
	"context"
	"testing"

	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/mcts"
	"github.com/rs/zerolog"
)

func mustParse(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.Parse(s)
	if err != nil {
		t.Fatalf("card.Parse(%q): %v", s, err)
	}
	return c
}

// freshOpenerState builds a valid street-0 State: nothing placed yet, so
// Unseen is the entire deck and the 5 dealt cards remain a subset of it
// (validateState requires every dealt card still be present in Unseen,
// since Unseen tracks cards not yet committed to a row, discard, or known
// opponent hand).
func freshOpenerState(t *testing.T) State {
	t.Helper()
	dealt := []card.Card{
		mustParse(t, "2h"), mustParse(t, "3c"), mustParse(t, "4d"),
		mustParse(t, "5s"), mustParse(t, "6h"),
	}
	return State{
		Arrangement: arrangement.New(),
		Unseen:      card.FullDeck,
		Street:      mcts.StreetOpener,
		Dealt:       dealt,
	}
}

func testSolver() *Solver {
	return New(zerolog.Nop())
}

func TestValidateStateRejectsOverlappingSets(t *testing.T) {
	s := freshOpenerState(t)
	// Claim a card as known-opponent while it is still present in Unseen.
	s.KnownOpponent = s.KnownOpponent.Insert(mustParse(t, "9h"))

	_, err := testSolver().Analyze(s)
	if err == nil {
		t.Fatalf("expected an error for overlapping card sets")
	}
	se, ok := err.(*SolverError)
	if !ok {
		t.Fatalf("expected a *SolverError, got %T", err)
	}
	if se.Kind != ErrInvalidInput {
		t.Fatalf("expected invalid_input, got %v", se.Kind)
	}
}

func TestValidateStateRejectsWrongDealtCount(t *testing.T) {
	s := freshOpenerState(t)
	s.Dealt = s.Dealt[:3] // street 0 needs 5

	_, err := testSolver().Analyze(s)
	if err == nil {
		t.Fatalf("expected an error for a mismatched dealt count")
	}
	se, ok := err.(*SolverError)
	if !ok || se.Kind != ErrInvalidInput {
		t.Fatalf("expected invalid_input, got %+v", err)
	}
}

func TestValidateStateRejectsDealtCardNotInUnseen(t *testing.T) {
	s := freshOpenerState(t)
	// Move the card out of Unseen into Discarded so the deck-union
	// invariant still holds, isolating the dealt-card-membership check.
	s.Unseen = s.Unseen.Remove(s.Dealt[0])
	s.Discarded = s.Discarded.Insert(s.Dealt[0])

	_, err := testSolver().Analyze(s)
	if err == nil {
		t.Fatalf("expected an error when a dealt card is missing from unseen")
	}
	se, ok := err.(*SolverError)
	if !ok || se.Kind != ErrExhaustedDeck {
		t.Fatalf("expected exhausted_deck, got %+v", err)
	}
}

func TestValidateStateRejectsStreetOutOfRange(t *testing.T) {
	s := freshOpenerState(t)
	s.Street = mcts.MaxStreet + 1
	s.Dealt = nil

	_, err := testSolver().Analyze(s)
	if err == nil {
		t.Fatalf("expected an error for an out-of-range street")
	}
}

func TestAnalyzeReturnsIncompleteRowLabels(t *testing.T) {
	s := freshOpenerState(t)
	summary, err := testSolver().Analyze(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range []arrangement.RowName{arrangement.Top, arrangement.Middle, arrangement.Bottom} {
		if summary.PerRowType[row] != "incomplete" {
			t.Fatalf("expected row %v to be reported incomplete, got %q", row, summary.PerRowType[row])
		}
	}
	if len(summary.TopActions) == 0 {
		t.Fatalf("expected Analyze to return candidate actions")
	}
}

func TestAnalyzeCompleteArrangementReportsRoyaltiesAndFoul(t *testing.T) {
	a := arrangement.New()
	for _, c := range []string{"Ah", "Ac", "2d"} {
		a.Place(mustParse(t, c), arrangement.Top)
	}
	for _, c := range []string{"5c", "6d", "7h", "8s", "9c"} {
		a.Place(mustParse(t, c), arrangement.Middle)
	}
	for _, c := range []string{"2h", "4d", "6h", "8d", "Tc"} {
		a.Place(mustParse(t, c), arrangement.Bottom)
	}
	unseen := card.FullDeck
	for _, r := range []arrangement.Row{a.Top, a.Middle, a.Bottom} {
		for _, c := range r.Cards {
			unseen = unseen.Remove(c)
		}
	}
	s := State{Arrangement: a, Unseen: unseen, Street: mcts.MaxStreet}

	summary, err := testSolver().Analyze(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.FoulProbability != 1 {
		t.Fatalf("expected a fouled complete arrangement to report FoulProbability 1, got %v", summary.FoulProbability)
	}
	if summary.CurrentRoyalties != 0 {
		t.Fatalf("expected a fouled arrangement to report zero royalties, got %d", summary.CurrentRoyalties)
	}
}

func TestSolveReturnsCompleteDecisionWithinBudget(t *testing.T) {
	s := freshOpenerState(t)
	opts := DefaultOptions()
	opts.Threads = 2
	opts.TranspositionMemo = false

	decision, err := testSolver().Solve(context.Background(), s, Budget{MaxSimulations: 20}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Complete {
		t.Fatalf("expected a completed decision within an explicit simulation budget")
	}
	if decision.SimulationsRun == 0 {
		t.Fatalf("expected at least one simulation to have run")
	}
	if decision.DegradedToSingle {
		t.Fatalf("expected no degradation with Threads=2")
	}
}

func TestSolveDegradesToSingleWorkerWhenThreadsNonPositive(t *testing.T) {
	s := freshOpenerState(t)
	opts := DefaultOptions()
	opts.Threads = 0

	decision, err := testSolver().Solve(context.Background(), s, Budget{MaxSimulations: 10}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.DegradedToSingle {
		t.Fatalf("expected DegradedToSingle when Threads <= 0")
	}
}

func TestSolveRejectsInvalidState(t *testing.T) {
	s := freshOpenerState(t)
	s.Dealt = s.Dealt[:2]

	_, err := testSolver().Solve(context.Background(), s, Budget{MaxSimulations: 5}, DefaultOptions())
	if err == nil {
		t.Fatalf("expected Solve to reject an invalid state before running any search")
	}
}

func TestDefaultOptionsMatchesEngineDefaults(t *testing.T) {
	opts := DefaultOptions()
	eng := mcts.DefaultOptions()
	if opts.ExplorationC != eng.ExplorationC {
		t.Fatalf("expected facade ExplorationC to mirror the engine default")
	}
	if opts.Parallelism != mcts.RootParallel {
		t.Fatalf("expected RootParallel by default")
	}
}
