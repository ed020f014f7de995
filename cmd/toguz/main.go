package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/cmd/internal/analyze"
	"github.com/kazanlab/toguz/cmd/internal/engine"
	"github.com/kazanlab/toguz/cmd/internal/online"
	"github.com/kazanlab/toguz/cmd/internal/play"
	"github.com/kazanlab/toguz/cmd/internal/selfplay"
	"github.com/kazanlab/toguz/cmd/internal/serve"
)

var (
	debug    = flag.Bool("debug", false, "log at debug level")
	jsonLogs = flag.Bool("json-logs", false, "log JSON instead of console output")
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&play.Command{}, "")
	subcommands.Register(&online.Command{}, "")
	subcommands.Register(&analyze.Command{}, "")
	subcommands.Register(&selfplay.Command{}, "")
	subcommands.Register(&engine.Command{}, "")
	subcommands.Register(&serve.Command{}, "")

	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if !*jsonLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
