package play

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/cli"
	"github.com/kazanlab/toguz/tki"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

type Command struct {
	white string
	black string
	start string
	debug int
	limit time.Duration
	out   string
	steps bool

	unicode bool
}

func (*Command) Name() string     { return "play" }
func (*Command) Synopsis() string { return "Play Toguz Korgool from the command line" }
func (*Command) Usage() string {
	return `play [flags]

Play on the command line, against a human or an engine. A player is
one of human, easy[:SEED], medium, hard, or tki:COMMAND.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.white, "white", "human", "white player")
	flags.StringVar(&c.black, "black", "hard", "black player")
	flags.StringVar(&c.start, "position", "", "start from a position in tkn notation")
	flags.IntVar(&c.debug, "debug", 0, "search debug level")
	flags.DurationVar(&c.limit, "limit", time.Minute, "engine time limit")
	flags.StringVar(&c.out, "out", "", "write the game record to file")
	flags.BoolVar(&c.steps, "steps", false, "print each step of every move")

	flags.BoolVar(&c.unicode, "unicode", false, "render board with utf8 glyphs")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start := toguz.New()
	if c.start != "" {
		var err error
		if start, err = tkn.ParsePosition(c.start); err != nil {
			log.Error().Err(err).Msg("-position")
			return subcommands.ExitUsageError
		}
	}
	in := bufio.NewReader(os.Stdin)
	var players [2]cli.Player
	for i, s := range []string{c.white, c.black} {
		p, closer, err := c.parsePlayer(in, s)
		if err != nil {
			log.Error().Err(err).Str("player", s).Msg("bad player")
			return subcommands.ExitUsageError
		}
		if closer != nil {
			defer closer()
		}
		players[i] = p
	}
	st := &cli.CLI{
		Start:     start,
		Out:       os.Stdout,
		White:     players[0],
		Black:     players[1],
		Glyphs:    glyphs(c.unicode),
		ShowSteps: c.steps,
	}
	st.Play()
	if c.out != "" {
		rec, err := tkn.NewRecord(start, st.Moves())
		if err != nil {
			log.Error().Err(err).Msg("build record")
			return subcommands.ExitFailure
		}
		rec.SetTag("White", c.white)
		rec.SetTag("Black", c.black)
		rec.SetTag("Date", time.Now().Format("2006.01.02"))
		if err := os.WriteFile(c.out, []byte(tkn.FormatRecord(rec)), 0644); err != nil {
			log.Error().Err(err).Msg("write record")
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

func glyphs(unicode bool) *cli.Glyphs {
	if unicode {
		return &cli.UnicodeGlyphs
	}
	return &cli.DefaultGlyphs
}

func (c *Command) parsePlayer(in *bufio.Reader, s string) (cli.Player, func(), error) {
	if s == "human" {
		return cli.NewCLIPlayer(os.Stdout, in), nil, nil
	}
	if cmd, ok := strings.CutPrefix(s, "tki:"); ok {
		client, err := tki.NewClient(strings.Fields(cmd))
		if err != nil {
			return nil, nil, err
		}
		p, err := client.NewGame(ai.Hard)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return cli.AIPlayer(p, c.limit), client.Close, nil
	}
	name, arg, _ := strings.Cut(s, ":")
	tier, err := ai.ParseTier(name)
	if err != nil {
		return nil, nil, err
	}
	cfg := ai.PlayerConfig{Tier: tier, Debug: c.debug}
	if arg != "" {
		if tier != ai.Easy {
			return nil, nil, fmt.Errorf("only the easy tier takes a seed: %q", s)
		}
		if cfg.Seed, err = strconv.ParseUint(arg, 10, 64); err != nil {
			return nil, nil, err
		}
	}
	return cli.AIPlayer(ai.NewPlayer(cfg), c.limit), nil, nil
}
