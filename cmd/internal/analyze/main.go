package analyze

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/cli"
	"github.com/kazanlab/toguz/cmd/internal/opt"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

type Command struct {
	position  string
	ply       int
	all       bool
	white     bool
	black     bool
	variation string

	quiet   bool
	eval    bool
	explain bool
	tkn     bool

	cpuProfile string

	mmopt opt.AI
}

func (*Command) Name() string     { return "analyze" }
func (*Command) Synopsis() string { return "Evaluate a position from a game record" }
func (*Command) Usage() string {
	return `analyze [options] FILE.tkn
analyze [options] -position "TKN"

Evaluate a position using a configurable engine.

By default evaluates the final position in the file; use -ply to select
an earlier position, -all to walk the whole game, and -variation to
play additional moves prior to analysis.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.position, "position", "", "analyze a position given in tkn notation")
	flags.IntVar(&c.ply, "ply", -1, "analyze the position after this many plies")
	flags.BoolVar(&c.all, "all", false, "analyze every position in the game")
	flags.BoolVar(&c.white, "white", false, "with -all, only analyze white's moves")
	flags.BoolVar(&c.black, "black", false, "with -all, only analyze black's moves")
	flags.StringVar(&c.variation, "variation", "", "apply the listed moves (1-9, side to move first) before analysis")

	flags.BoolVar(&c.quiet, "quiet", false, "don't print board diagrams")
	flags.BoolVar(&c.eval, "evaluate", false, "only show static evaluation")
	flags.BoolVar(&c.explain, "explain", false, "explain scoring")
	flags.BoolVar(&c.tkn, "tkn", false, "print each position in tkn notation")

	flags.StringVar(&c.cpuProfile, "cpuprofile", "", "write CPU profile")

	c.mmopt.AddFlags(flags)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.white && c.black {
		log.Error().Msg("-white and -black are exclusive")
		return subcommands.ExitUsageError
	}
	cfg, err := c.mmopt.MinimaxConfig()
	if err != nil {
		log.Error().Err(err).Msg("engine flags")
		return subcommands.ExitUsageError
	}
	w, _ := c.mmopt.EvalWeights()

	if c.cpuProfile != "" {
		f, err := os.Create(c.cpuProfile)
		if err != nil {
			log.Error().Err(err).Msg("open cpu-profile")
			return subcommands.ExitFailure
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	ps, err := c.positions(flag)
	if err != nil {
		log.Error().Err(err).Msg("load positions")
		return subcommands.ExitUsageError
	}
	a := &analysis{cmd: c, ai: ai.NewMinimax(cfg), weights: &w}
	for _, p := range ps {
		if c.variation != "" {
			if p, err = applyVariation(p, c.variation); err != nil {
				log.Error().Err(err).Msg("-variation")
				return subcommands.ExitUsageError
			}
		}
		a.Analyze(p)
	}
	return subcommands.ExitSuccess
}

// positions returns the positions to analyze, in order.
func (c *Command) positions(flag *flag.FlagSet) ([]*toguz.Position, error) {
	if c.position != "" {
		p, err := tkn.ParsePosition(c.position)
		if err != nil {
			return nil, err
		}
		return []*toguz.Position{p}, nil
	}
	if flag.NArg() != 1 {
		return nil, fmt.Errorf("need a record file or -position")
	}
	rec, err := tkn.ParseFile(flag.Arg(0))
	if err != nil {
		return nil, err
	}
	if !c.all {
		if c.ply < 0 {
			ps, err := rec.Replay()
			if err != nil {
				return nil, err
			}
			return ps[len(ps)-1:], nil
		}
		p, err := rec.PositionAtMove(c.ply)
		if err != nil {
			return nil, err
		}
		return []*toguz.Position{p}, nil
	}
	ps, err := rec.Replay()
	if err != nil {
		return nil, err
	}
	var out []*toguz.Position
	for _, p := range ps {
		if over, _ := p.GameOver(); over {
			continue
		}
		switch {
		case c.white && p.ToMove() != toguz.White:
		case c.black && p.ToMove() != toguz.Black:
		default:
			out = append(out, p)
		}
	}
	return out, nil
}

func applyVariation(p *toguz.Position, variant string) (*toguz.Position, error) {
	for _, s := range strings.Fields(variant) {
		side := p.ToMove()
		pit, err := tkn.ParseMove(side, s)
		if err != nil {
			return nil, err
		}
		if p, err = p.Move(side, pit); err != nil {
			return nil, fmt.Errorf("bad move `%s': %w", s, err)
		}
	}
	return p, nil
}

type analysis struct {
	cmd     *Command
	ai      *ai.MinimaxAI
	weights *ai.Weights
}

func formatPV(side toguz.Side, pv []int) string {
	var out []string
	for _, pit := range pv {
		out = append(out, tkn.FormatMove(side, pit))
		side = side.Flip()
	}
	return strings.Join(out, " ")
}

func (a *analysis) Analyze(p *toguz.Position) {
	c := a.cmd
	if !c.quiet {
		cli.RenderBoard(nil, os.Stdout, p)
		if c.explain {
			ai.ExplainScore(os.Stdout, a.weights, p)
		}
	}
	if c.tkn {
		fmt.Printf("[Position \"%s\"]\n", tkn.FormatPosition(p))
	}
	if c.eval {
		fmt.Printf(" value=%.1f\n", ai.MakeEvaluator(a.weights)(p, p.ToMove()))
		return
	}
	start := time.Now()
	pv, val, st := a.ai.Analyze(p)
	fmt.Printf("ply %d, %s to move:\n", p.MoveNumber(), p.ToMove())
	fmt.Printf(" pv=%s\n", formatPV(p.ToMove(), pv))
	fmt.Printf(" value=%.1f depth=%d visited=%d evaluated=%d cut=%d time=%s\n",
		val, st.Depth, st.Visited, st.Evaluated, st.Cutoffs, time.Since(start))
	fmt.Println()

	if len(pv) == 0 || c.quiet {
		return
	}
	for _, pit := range pv {
		n, err := p.Move(p.ToMove(), pit)
		if err != nil {
			log.Error().Err(err).Int("pit", pit).Msg("illegal move in pv")
			return
		}
		p = n
	}
	fmt.Println("Resulting position:")
	cli.RenderBoard(nil, os.Stdout, p)
	if c.explain {
		ai.ExplainScore(os.Stdout, a.weights, p)
	}
	fmt.Println()
}
