package serve

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/logs"
	"github.com/kazanlab/toguz/relay"
)

type Command struct {
	config  string
	addr    string
	gameLog string
	idle    time.Duration
}

func (*Command) Name() string     { return "serve" }
func (*Command) Synopsis() string { return "Run the room relay" }
func (*Command) Usage() string {
	return `serve [-config relay.yaml] [flags]

Serve rooms over websockets at /ws. Flags override the config file.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.config, "config", "", "YAML config file")
	flags.StringVar(&c.addr, "addr", "", "listen address")
	flags.StringVar(&c.gameLog, "game-log", "", "sqlite database for finished games")
	flags.DurationVar(&c.idle, "idle-timeout", 0, "reclaim rooms idle this long")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := relay.DefaultConfig()
	if c.config != "" {
		var err error
		if cfg, err = relay.LoadConfig(c.config); err != nil {
			log.Error().Err(err).Msg("load config")
			return subcommands.ExitUsageError
		}
	}
	if c.addr != "" {
		cfg.Addr = c.addr
	}
	if c.gameLog != "" {
		cfg.GameLog = c.gameLog
	}
	if c.idle != 0 {
		cfg.IdleTimeout = c.idle
	}
	if err := cfg.Check(); err != nil {
		log.Error().Err(err).Msg("config")
		return subcommands.ExitUsageError
	}

	var games relay.GameRecorder
	if cfg.GameLog != "" {
		repo, err := logs.Open(cfg.GameLog)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.GameLog).Msg("open game log")
			return subcommands.ExitFailure
		}
		defer repo.Close()
		games = repo
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := relay.NewServer(cfg, games).Run(ctx); err != nil {
		log.Error().Err(err).Msg("relay")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
