package selfplay

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/logs"
	"github.com/kazanlab/toguz/tki"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

type Command struct {
	p1   string
	p2   string
	seed uint64

	games  int
	cutoff int
	swap   bool

	prefix   string
	openings string

	debug int
	limit time.Duration

	threads int

	out     string
	summary string
	db      string
	verbose bool
}

func (*Command) Name() string     { return "selfplay" }
func (*Command) Synopsis() string { return "Play two AIs against each other and report results" }
func (*Command) Usage() string {
	return `selfplay [flags]

A player is easy, medium, hard, or tki:COMMAND.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.p1, "p1", "hard", "player 1")
	flags.StringVar(&c.p2, "p2", "medium", "player 2")

	flags.Uint64Var(&c.seed, "seed", 0, "starting random seed")
	flags.IntVar(&c.games, "games", 10, "number of games to play per opening/color")
	flags.IntVar(&c.cutoff, "cutoff", 400, "cut games off after how many plies")
	flags.BoolVar(&c.swap, "swap", true, "swap colors each game")
	flags.StringVar(&c.prefix, "prefix", "", "game record to start games at the end of")
	flags.StringVar(&c.openings, "openings", "", "file of openings, one tkn position per line")
	flags.IntVar(&c.debug, "debug", 0, "search debug level")
	flags.DurationVar(&c.limit, "limit", 0, "amount of time to search each move")
	flags.IntVar(&c.threads, "threads", 4, "number of parallel games")
	flags.StringVar(&c.out, "out", "", "directory to write game records to")
	flags.StringVar(&c.summary, "summary", "", "write summary JSON file")
	flags.StringVar(&c.db, "db", "", "sqlite database to log games to")
	flags.BoolVar(&c.verbose, "v", false, "verbose output")
}

func readOpenings(path string) ([]*toguz.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []*toguz.Position
	r := bufio.NewScanner(f)
	for r.Scan() {
		line := strings.TrimSpace(r.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pos, err := tkn.ParsePosition(line)
		if err != nil {
			return nil, fmt.Errorf("parse position: %q: %w", line, err)
		}
		out = append(out, pos)
	}
	return out, r.Err()
}

func (c *Command) playerFunc(s string) (PlayerFunc, error) {
	if cmd, ok := strings.CutPrefix(s, "tki:"); ok {
		argv := strings.Fields(cmd)
		return func(uint64) (ai.Player, func(), error) {
			client, err := tki.NewClient(argv)
			if err != nil {
				return nil, nil, err
			}
			p, err := client.NewGame(ai.Hard)
			if err != nil {
				client.Close()
				return nil, nil, err
			}
			return p, client.Close, nil
		}, nil
	}
	tier, err := ai.ParseTier(s)
	if err != nil {
		return nil, err
	}
	return func(seed uint64) (ai.Player, func(), error) {
		return ai.NewPlayer(ai.PlayerConfig{Tier: tier, Seed: seed, Debug: c.debug}), nil, nil
	}, nil
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.seed == 0 {
		c.seed = uint64(time.Now().Unix())
	}

	var openings []*toguz.Position
	if c.prefix != "" {
		rec, err := tkn.ParseFile(c.prefix)
		if err != nil {
			log.Error().Err(err).Msg("-prefix")
			return subcommands.ExitUsageError
		}
		ps, err := rec.Replay()
		if err != nil {
			log.Error().Err(err).Msg("-prefix")
			return subcommands.ExitUsageError
		}
		openings = []*toguz.Position{ps[len(ps)-1]}
	}
	if c.openings != "" {
		var err error
		if openings, err = readOpenings(c.openings); err != nil {
			log.Error().Err(err).Msg("-openings")
			return subcommands.ExitUsageError
		}
	}
	if len(openings) == 0 {
		openings = []*toguz.Position{toguz.New()}
	}

	p1, err := c.playerFunc(c.p1)
	if err != nil {
		log.Error().Err(err).Msg("-p1")
		return subcommands.ExitUsageError
	}
	p2, err := c.playerFunc(c.p2)
	if err != nil {
		log.Error().Err(err).Msg("-p2")
		return subcommands.ExitUsageError
	}

	cfg := &Config{
		Swap:    c.swap,
		Games:   c.games,
		Threads: c.threads,
		Seed:    c.seed,
		Cutoff:  c.cutoff,
		Limit:   c.limit,
		Initial: openings,
		Verbose: c.verbose,
		P1:      p1,
		P2:      p2,
	}

	st, err := Simulate(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("simulate")
		return subcommands.ExitFailure
	}

	if c.out != "" {
		if c.summary == "" {
			c.summary = path.Join(c.out, "summary.json")
		}
		for i := range st.Games {
			if err := c.writeGame(c.out, &st.Games[i]); err != nil {
				log.Warn().Err(err).Msg("write game")
			}
		}
	}
	if c.db != "" {
		if err := c.logGames(st.Games); err != nil {
			log.Error().Err(err).Str("db", c.db).Msg("log games")
		}
	}
	if c.summary != "" {
		if err := c.writeSummary(c.summary, &st); err != nil {
			log.Error().Err(err).Msg("write summary")
		}
	}

	log.Info().
		Int("games", st.Count()).
		Uint64("seed", c.seed).
		Int("ties", st.Ties).
		Int("cutoff", st.Cutoff).
		Int("white", st.White).
		Int("black", st.Black).
		Msg("done")
	tw := tabwriter.NewWriter(os.Stderr, 2, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\twhite\tblack\tsum\tstones\n")
	fmt.Fprintf(tw, "p1\t%d\t%d\t%d\t%d\n", st.Players[0].WhiteWins, st.Players[0].BlackWins, st.Players[0].Wins, st.Players[0].Stores)
	fmt.Fprintf(tw, "p2\t%d\t%d\t%d\t%d\n", st.Players[1].WhiteWins, st.Players[1].BlackWins, st.Players[1].Wins, st.Players[1].Stores)
	fmt.Fprintf(tw, "sum\t%d\t%d\t%d\t\n",
		st.Players[0].WhiteWins+st.Players[1].WhiteWins,
		st.Players[0].BlackWins+st.Players[1].BlackWins,
		st.Players[0].Wins+st.Players[1].Wins,
	)
	tw.Flush()

	a, b := int64(st.Players[0].Wins), int64(st.Players[1].Wins)
	if a < b {
		a, b = b, a
	}
	log.Info().Float64("p", binomTest(a, b, 0.5)).Msg("one-sided binomial test")

	return subcommands.ExitSuccess
}

func (c *Command) names(r *Result) (white, black string) {
	if r.P1Color() == toguz.White {
		return c.p1, c.p2
	}
	return c.p2, c.p1
}

func (c *Command) writeGame(d string, r *Result) error {
	if err := os.MkdirAll(d, 0755); err != nil {
		return err
	}
	rec, err := tkn.NewRecord(r.Initial, r.Moves)
	if err != nil {
		return err
	}
	white, black := c.names(r)
	rec.SetTag("White", white)
	rec.SetTag("Black", black)
	p := path.Join(d, fmt.Sprintf("%d-%d.tkn", r.spec.oi, r.spec.i))
	return os.WriteFile(p, []byte(tkn.FormatRecord(rec)), 0644)
}

func (c *Command) logGames(rs []Result) error {
	repo, err := logs.Open(c.db)
	if err != nil {
		return err
	}
	defer repo.Close()
	now := time.Now()
	var gs []*logs.Game
	for i := range rs {
		white, black := c.names(&rs[i])
		g, err := logs.NewGame(white, black, rs[i].Initial, rs[i].Position, now)
		if err != nil {
			return err
		}
		gs = append(gs, g)
	}
	return repo.InsertGames(gs)
}

type Summary struct {
	Cmdline []string
	Player1 string
	Player2 string
	Limit   time.Duration
	Stats   *Stats
}

func (c *Command) writeSummary(path string, stats *Stats) error {
	summary := Summary{
		Cmdline: os.Args,
		Player1: c.p1,
		Player2: c.p2,
		Limit:   c.limit,
		Stats:   stats,
	}
	bs, err := json.MarshalIndent(&summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}
