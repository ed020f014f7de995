package online

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/cli"
	"github.com/kazanlab/toguz/cmd/internal/opt"
	"github.com/kazanlab/toguz/infer"
	"github.com/kazanlab/toguz/netplay"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

type Command struct {
	url       string
	name      string
	join      string
	human     bool
	snapshots bool
	once      bool
	debug     bool
	ping      time.Duration
	unicode   bool

	mmopt opt.AI
}

func (*Command) Name() string     { return "online" }
func (*Command) Synopsis() string { return "Play through a relay" }
func (*Command) Usage() string {
	return `online [-join CODE] [flags]

Create a room on the relay, or join one with -join, and play it either
from the terminal (-human) or with an engine.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.url, "url", "ws://localhost:5000/ws", "relay websocket URL")
	flags.StringVar(&c.name, "name", "", "player name")
	flags.StringVar(&c.join, "join", "", "room code to join")
	flags.BoolVar(&c.human, "human", false, "play from the terminal instead of an engine")
	flags.BoolVar(&c.snapshots, "snapshots", false, "submit whole boards instead of pits")
	flags.BoolVar(&c.once, "once", true, "leave after one game")
	flags.BoolVar(&c.debug, "debug-wire", false, "log every message")
	flags.DurationVar(&c.ping, "ping", 20*time.Second, "ping interval")
	flags.BoolVar(&c.unicode, "unicode", false, "render board with utf8 glyphs")
	c.mmopt.AddFlags(flags)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var player ai.Player
	if c.human {
		player = &humanPlayer{
			in:     cli.NewCLIPlayer(os.Stdout, bufio.NewReader(os.Stdin)),
			out:    os.Stdout,
			glyphs: glyphs(c.unicode),
		}
	} else {
		var err error
		if player, err = c.mmopt.Build(); err != nil {
			log.Error().Err(err).Msg("engine flags")
			return subcommands.ExitUsageError
		}
	}

	client, err := netplay.Dial(ctx, c.url, c.ping, c.debug)
	if err != nil {
		log.Error().Err(err).Str("url", c.url).Msg("dial")
		return subcommands.ExitFailure
	}
	defer client.Shutdown()
	cmds := &netplay.Commands{Client: client}

	g := &netplay.Game{Snapshots: c.snapshots}
	var start *toguz.Position
	if c.join != "" {
		joined, err := cmds.JoinRoom(strings.ToUpper(c.join), c.name)
		if err != nil {
			log.Error().Err(err).Str("room", c.join).Msg("join")
			return subcommands.ExitFailure
		}
		g.Code, g.Side, g.Opponent, start = joined.RoomCode, joined.Color, joined.OpponentName, joined.Board
	} else {
		created, err := cmds.CreateRoom(c.name)
		if err != nil {
			log.Error().Err(err).Msg("create room")
			return subcommands.ExitFailure
		}
		fmt.Printf("room %s: waiting for an opponent\n", created.RoomCode)
		joined, err := cmds.WaitForOpponent()
		if err != nil {
			log.Error().Err(err).Msg("wait for opponent")
			return subcommands.ExitFailure
		}
		g.Code, g.Side, g.Opponent, start = created.RoomCode, created.Color, joined.PlayerName, joined.Board
	}
	if c.human {
		g.Observe = c.showUpdate
	}

	for {
		final, err := netplay.PlayGame(ctx, cmds, g, start, player)
		if err != nil {
			log.Error().Err(err).Msg("game")
			return subcommands.ExitFailure
		}
		_, winner := final.GameOver()
		fmt.Printf("game over: %s (%d-%d)\n", tkn.FormatResult(winner),
			final.Store(toguz.White), final.Store(toguz.Black))
		if c.once {
			return subcommands.ExitSuccess
		}
		cmds.NewGame(g.Code)
		start = toguz.New()
	}
}

func (c *Command) showUpdate(u infer.Update) {
	if u.Replay == nil {
		return
	}
	fmt.Printf("%s plays %s\n", u.Replay.Side, tkn.FormatMove(u.Replay.Side, u.Replay.Pit))
	for _, s := range u.Replay.Steps {
		if s.Kind != toguz.Sow {
			fmt.Printf("  %s\n", s)
		}
	}
}

func glyphs(unicode bool) *cli.Glyphs {
	if unicode {
		return &cli.UnicodeGlyphs
	}
	return &cli.DefaultGlyphs
}

// humanPlayer lets a terminal player stand in for an engine. Undo is
// not available online.
type humanPlayer struct {
	in     cli.Player
	out    io.Writer
	glyphs *cli.Glyphs
}

func (h *humanPlayer) GetMove(ctx context.Context, p *toguz.Position) (int, bool) {
	cli.RenderBoard(h.glyphs, h.out, p)
	for {
		m := h.in.GetMove(p)
		switch m.Action {
		case cli.Resign:
			return 0, false
		case cli.Undo:
			fmt.Fprintln(h.out, "undo is not available online")
			continue
		}
		if _, err := p.Move(p.ToMove(), m.Pit); err != nil {
			fmt.Fprintln(h.out, "illegal move:", err)
			continue
		}
		return m.Pit, true
	}
}
