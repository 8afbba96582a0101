// Package config loads the solver's engine configuration from HCL files,
// grounded on the teacher's server configuration loader: an HCL struct
// tree decoded with gohcl, defaults filled in for whatever the file
// omits, and a Validate pass before the config is handed to the engine.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// EngineConfig is the complete solver configuration.
type EngineConfig struct {
	Engine  EngineSettings `hcl:"engine,block"`
	Logging LoggingConfig  `hcl:"logging,block"`
}

// EngineSettings configures the MCTS engine and move generator.
type EngineSettings struct {
	Threads              int     `hcl:"threads,optional"`
	Parallelism          string  `hcl:"parallelism,optional"` // "root" or "tree"
	ExplorationC         float64 `hcl:"exploration_c,optional"`
	EpsGreedy            float64 `hcl:"eps_greedy,optional"`
	ProgressiveWidening  bool    `hcl:"progressive_widening,optional"`
	TranspositionMemo    bool    `hcl:"transposition_memo,optional"`
	MemoCapacity         int     `hcl:"memo_capacity,optional"`
	RNGSeed              int64   `hcl:"rng_seed,optional"`
	OpenerCandidateWidth int     `hcl:"opener_candidate_width,optional"`
	FoulPenalty          int     `hcl:"foul_penalty,optional"`
	MaxSimulations       int64   `hcl:"max_simulations,optional"`
	TimeLimitSeconds     float64 `hcl:"time_limit_seconds,optional"`
}

// LoggingConfig configures the zerolog writer.
type LoggingConfig struct {
	Level  string `hcl:"level,optional"`
	Pretty bool   `hcl:"pretty,optional"`
}

// Default returns the engine defaults, matching solver.DefaultOptions.
func Default() *EngineConfig {
	return &EngineConfig{
		Engine: EngineSettings{
			Threads:              4,
			Parallelism:          "root",
			ExplorationC:         1.4142135623730951,
			EpsGreedy:            0.1,
			ProgressiveWidening:  true,
			TranspositionMemo:    true,
			MemoCapacity:         1 << 16,
			RNGSeed:              1,
			OpenerCandidateWidth: 30,
			FoulPenalty:          6,
			MaxSimulations:       10000,
			TimeLimitSeconds:     5,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads an EngineConfig from an HCL file at filename, falling back to
// Default when the file does not exist. Fields omitted from the file keep
// their Default value.
func Load(filename string) (*EngineConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	cfg := *Default()
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	if cfg.Engine.Threads == 0 {
		cfg.Engine.Threads = Default().Engine.Threads
	}
	if cfg.Engine.MemoCapacity == 0 {
		cfg.Engine.MemoCapacity = Default().Engine.MemoCapacity
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *EngineConfig) Validate() error {
	if c.Engine.Threads < 1 {
		return fmt.Errorf("config: engine.threads must be >= 1")
	}
	if c.Engine.Parallelism != "root" && c.Engine.Parallelism != "tree" {
		return fmt.Errorf("config: engine.parallelism must be \"root\" or \"tree\", got %q", c.Engine.Parallelism)
	}
	if c.Engine.ExplorationC <= 0 {
		return fmt.Errorf("config: engine.exploration_c must be positive")
	}
	if c.Engine.EpsGreedy < 0 || c.Engine.EpsGreedy > 1 {
		return fmt.Errorf("config: engine.eps_greedy must be in [0, 1]")
	}
	if c.Engine.OpenerCandidateWidth < 1 {
		return fmt.Errorf("config: engine.opener_candidate_width must be >= 1")
	}
	if c.Engine.MaxSimulations <= 0 && c.Engine.TimeLimitSeconds <= 0 {
		return fmt.Errorf("config: engine must set max_simulations, time_limit_seconds, or both")
	}
	return nil
}
