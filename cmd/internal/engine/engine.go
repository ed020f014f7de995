package engine

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/tki"
)

type Command struct {
	tier string
	seed uint64
}

func (*Command) Name() string     { return "engine" }
func (*Command) Synopsis() string { return "Run the engine over the tki protocol on stdin/stdout" }
func (*Command) Usage() string {
	return `engine
Launch the engine in a UCI-like mode, suitable for being
driven by an external GUI or controller.`
}

func (c *Command) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.tier, "tier", "hard", "tier for `go` commands that name none")
	fs.Uint64Var(&c.seed, "seed", 0, "seed for the easy tier")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tier, err := ai.ParseTier(c.tier)
	if err != nil {
		log.Error().Err(err).Msg("-tier")
		return subcommands.ExitUsageError
	}
	e := tki.NewEngine(os.Stdin, os.Stdout)
	e.Tier = tier
	e.Seed = c.seed
	if err := e.Run(ctx); err != nil {
		log.Error().Err(err).Msg("engine")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
