package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ofcsolver/ofcsolver/internal/config"
	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/mcts"
	"github.com/ofcsolver/ofcsolver/ofc/solver"
)

var cli struct {
	Debug  bool   `help:"enable debug logging"`
	Config string `help:"path to an HCL engine config file" default:"ofcsolver.hcl"`

	Solve   SolveCmd   `cmd:"" help:"solve one street and print the chosen action"`
	Analyze AnalyzeCmd `cmd:"" help:"print a static heuristic summary, no search"`
	View    ViewCmd    `cmd:"" help:"run solve and watch live search progress in a terminal UI"`
}

// SolveCmd drives Solver.Solve from flag-supplied state.
type SolveCmd struct {
	Arrangement string   `help:"placed cards as top/middle/bottom slash-separated groups, e.g. 'Ah/9s9d/Kc Kd Kh Kc'"`
	Dealt       []string `help:"cards just dealt, awaiting placement" required:""`
	Street      int      `help:"street number, 0=opener 1..4=three-card streets" default:"0"`
	Seed        int64    `help:"deterministic RNG seed" default:"1"`
	Threads     int      `help:"worker count, overrides config" default:"0"`
	Tree        bool     `help:"use tree-parallel search instead of root-parallel"`
	MaxSims     int64    `help:"simulation cap, overrides config" default:"0"`
	TimeLimit   float64  `help:"time limit in seconds, overrides config" default:"0"`
}

// AnalyzeCmd drives Solver.Analyze: heuristic only, no MCTS.
type AnalyzeCmd struct {
	Arrangement string   `help:"placed cards as top/middle/bottom slash-separated groups"`
	Dealt       []string `help:"cards just dealt, awaiting placement" required:""`
	Street      int      `help:"street number, 0=opener 1..4=three-card streets" default:"0"`
}

// ViewCmd runs the same search as SolveCmd but renders live progress with
// a bubbletea TUI instead of printing a single JSON result.
type ViewCmd struct {
	SolveCmd
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ofcsolver"),
		kong.Description("Pineapple Open-Face Chinese Poker solver"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	var cmdErr error
	switch ctx.Command() {
	case "solve":
		cmdErr = cli.Solve.Run(context.Background(), cfg)
	case "analyze":
		cmdErr = cli.Analyze.Run(context.Background())
	case "view":
		cmdErr = cli.View.RunView(context.Background(), cfg)
	default:
		log.Fatal().Msgf("unknown command: %s", ctx.Command())
	}
	if cmdErr != nil {
		log.Fatal().Err(cmdErr).Msg("command failed")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

// buildState parses a CLI-supplied partial arrangement and dealt cards
// into an mcts.State, computing unseen as the full deck minus every placed
// card. Dealt cards stay in unseen, as the solver's state validation
// requires. A row group may list cards separated by spaces or run
// together ("9s9d").
func buildState(arrangementSpec string, dealt []string, street int) (mcts.State, error) {
	a := arrangement.New()
	groups := strings.Split(arrangementSpec, "/")
	for i, row := range []arrangement.RowName{arrangement.Top, arrangement.Middle, arrangement.Bottom} {
		if i >= len(groups) {
			continue
		}
		var toks []string
		for _, field := range strings.Fields(groups[i]) {
			for len(field) > 2 {
				toks = append(toks, field[:2])
				field = field[2:]
			}
			toks = append(toks, field)
		}
		for _, tok := range toks {
			c, err := card.Parse(tok)
			if err != nil {
				return mcts.State{}, fmt.Errorf("parsing %s row: %w", row, err)
			}
			if !a.CanPlace(row) {
				return mcts.State{}, fmt.Errorf("row %s is already full", row)
			}
			a.Place(c, row)
		}
	}

	dealtCards := make([]card.Card, 0, len(dealt))
	for _, tok := range dealt {
		c, err := card.Parse(tok)
		if err != nil {
			return mcts.State{}, fmt.Errorf("parsing dealt card: %w", err)
		}
		dealtCards = append(dealtCards, c)
	}

	unseen := card.FullDeck
	unseen = unseen.Without(a.Top.Set()).Without(a.Middle.Set()).Without(a.Bottom.Set())

	return mcts.State{
		Arrangement: a,
		Unseen:      unseen,
		Street:      mcts.Street(street),
		Dealt:       dealtCards,
	}, nil
}

func (cmd *SolveCmd) options(cfg *config.EngineConfig) solver.Options {
	opts := solver.DefaultOptions()
	opts.ExplorationC = cfg.Engine.ExplorationC
	opts.EpsGreedy = cfg.Engine.EpsGreedy
	opts.ProgressiveWidening = cfg.Engine.ProgressiveWidening
	opts.TranspositionMemo = cfg.Engine.TranspositionMemo
	opts.MemoCapacity = cfg.Engine.MemoCapacity
	opts.RNGSeed = cmd.Seed
	opts.OpenerCandidateWidth = cfg.Engine.OpenerCandidateWidth
	opts.FoulPenalty = cfg.Engine.FoulPenalty
	opts.Threads = cfg.Engine.Threads
	if cmd.Threads > 0 {
		opts.Threads = cmd.Threads
	}
	if cfg.Engine.Parallelism == "tree" {
		opts.Parallelism = mcts.TreeParallel
	} else {
		opts.Parallelism = mcts.RootParallel
	}
	if cmd.Tree {
		opts.Parallelism = mcts.TreeParallel
	}
	return opts
}

func (cmd *SolveCmd) budget(cfg *config.EngineConfig) solver.Budget {
	maxSims := cfg.Engine.MaxSimulations
	if cmd.MaxSims > 0 {
		maxSims = cmd.MaxSims
	}
	timeLimit := cfg.Engine.TimeLimitSeconds
	if cmd.TimeLimit > 0 {
		timeLimit = cmd.TimeLimit
	}
	b := solver.Budget{MaxSimulations: maxSims}
	if timeLimit > 0 {
		b.Deadline = time.Now().Add(time.Duration(timeLimit * float64(time.Second)))
	}
	var cancel atomic.Bool
	b.Cancel = &cancel
	return b
}

// Run solves one street and prints the decision as JSON to stdout.
func (cmd *SolveCmd) Run(ctx context.Context, cfg *config.EngineConfig) error {
	state, err := buildState(cmd.Arrangement, cmd.Dealt, cmd.Street)
	if err != nil {
		return err
	}
	sv := solver.New(log.Logger.With().Str("component", "solve").Logger())
	decision, err := sv.Solve(ctx, state, cmd.budget(cfg), cmd.options(cfg))
	if err != nil {
		return err
	}
	return printJSON(decision)
}

// Run prints a heuristic-only summary as JSON to stdout.
func (cmd *AnalyzeCmd) Run(ctx context.Context) error {
	state, err := buildState(cmd.Arrangement, cmd.Dealt, cmd.Street)
	if err != nil {
		return err
	}
	sv := solver.New(log.Logger.With().Str("component", "analyze").Logger())
	summary, err := sv.Analyze(state)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
