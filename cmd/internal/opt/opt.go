package opt

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/kazanlab/toguz/ai"
)

// AI holds the flags shared by every command that builds an engine.
type AI struct {
	Tier    string
	Seed    uint64
	Debug   int
	Depth   int
	Prune   bool
	Weights string
}

func (o *AI) AddFlags(flags *flag.FlagSet) {
	flags.StringVar(&o.Tier, "tier", "hard", "engine tier: easy, medium or hard")
	flags.Uint64Var(&o.Seed, "seed", 0, "seed for the easy tier")
	flags.IntVar(&o.Debug, "debug", 0, "search debug level")
	flags.IntVar(&o.Depth, "depth", 0, "override the tier's search depth")
	flags.BoolVar(&o.Prune, "prune", true, "use alpha-beta pruning when -depth is set")
	flags.StringVar(&o.Weights, "weights", "", "JSON-encoded evaluation weights")
}

func (o *AI) ParseTier() (ai.Tier, error) {
	return ai.ParseTier(o.Tier)
}

// Build returns the engine the flags describe.
func (o *AI) Build() (ai.Player, error) {
	tier, err := o.ParseTier()
	if err != nil {
		return nil, err
	}
	if o.Depth == 0 && o.Weights == "" {
		return ai.NewPlayer(ai.PlayerConfig{Tier: tier, Seed: o.Seed, Debug: o.Debug}), nil
	}
	cfg, err := o.MinimaxConfig()
	if err != nil {
		return nil, err
	}
	return ai.NewMinimax(cfg), nil
}

// MinimaxConfig is the search configuration for the flags; the easy
// tier is treated as medium.
func (o *AI) MinimaxConfig() (ai.MinimaxConfig, error) {
	tier, err := o.ParseTier()
	if err != nil {
		return ai.MinimaxConfig{}, err
	}
	cfg := ai.ConfigForTier(tier)
	cfg.Debug = o.Debug
	if o.Depth > 0 {
		cfg.Depth = o.Depth
		cfg.Prune = o.Prune
	}
	w, err := o.EvalWeights()
	if err != nil {
		return cfg, err
	}
	cfg.Evaluate = ai.MakeEvaluator(&w)
	return cfg, nil
}

func (o *AI) EvalWeights() (ai.Weights, error) {
	w := ai.DefaultWeights
	if o.Weights != "" {
		if err := json.Unmarshal([]byte(o.Weights), &w); err != nil {
			return w, fmt.Errorf("parse weights: %w", err)
		}
	}
	return w, nil
}
