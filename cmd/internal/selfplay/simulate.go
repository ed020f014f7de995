package selfplay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/toguz"
)

// PlayerFunc builds a fresh engine for one game. The returned func, if
// any, releases it.
type PlayerFunc func(seed uint64) (ai.Player, func(), error)

type Config struct {
	Games   int
	Verbose bool

	Initial []*toguz.Position

	P1, P2 PlayerFunc

	Swap    bool
	Threads int
	Seed    uint64
	// Cutoff ends a game unfinished after this many plies.
	Cutoff int
	Limit  time.Duration
}

type Stats struct {
	Players [2]struct {
		Wins      int
		WhiteWins int
		BlackWins int
		// Stores sums the player's final store over every game.
		Stores int
	}
	White, Black int
	Ties         int
	Cutoff       int

	Games []Result `json:"-"`
}

func (s *Stats) Count() int {
	return s.White + s.Black + s.Ties + s.Cutoff
}

type gameSpec struct {
	opening *toguz.Position
	oi      int
	i       int
	seed    uint64
	p1color toguz.Side
}

type Result struct {
	spec     gameSpec
	Initial  *toguz.Position
	Position *toguz.Position
	Moves    []int
	Winner   toguz.Side
}

func (r *Result) Over() bool {
	over, _ := r.Position.GameOver()
	return over
}

func (r *Result) P1Color() toguz.Side {
	return r.spec.p1color
}

func specs(c *Config) []gameSpec {
	r := rand.New(rand.NewSource(c.Seed))
	var out []gameSpec
	for oi, pos := range c.Initial {
		n := c.Games
		if c.Swap {
			n *= 2
		}
		for g := 0; g < n; g++ {
			p1color := toguz.White
			if c.Swap && g%2 == 1 {
				p1color = toguz.Black
			}
			out = append(out, gameSpec{
				opening: pos,
				oi:      oi,
				i:       g,
				seed:    r.Uint64(),
				p1color: p1color,
			})
		}
	}
	return out
}

// Simulate plays every game c describes, c.Threads at a time.
func Simulate(ctx context.Context, c *Config) (Stats, error) {
	gs := specs(c)
	results := make([]Result, len(gs))
	g, ctx := errgroup.WithContext(ctx)
	threads := c.Threads
	if threads <= 0 {
		threads = 1
	}
	g.SetLimit(threads)
	for i := range gs {
		i := i
		g.Go(func() error {
			r, err := playGame(ctx, c, gs[i])
			if err != nil {
				return fmt.Errorf("game %d/%d: %w", gs[i].oi, gs[i].i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, r := range results {
		st.add(c, r)
	}
	return st, nil
}

func (st *Stats) add(c *Config, r Result) {
	if c.Verbose {
		log.Info().
			Int("opening", r.spec.oi).
			Int("game", r.spec.i).
			Int("plies", len(r.Moves)).
			Stringer("p1", r.spec.p1color).
			Stringer("winner", r.Winner).
			Int("white", r.Position.Store(toguz.White)).
			Int("black", r.Position.Store(toguz.Black)).
			Msg("game")
	}
	switch {
	case !r.Over():
		st.Cutoff++
	case r.Winner == toguz.White:
		st.White++
	case r.Winner == toguz.Black:
		st.Black++
	default:
		st.Ties++
	}
	st.Players[0].Stores += r.Position.Store(r.spec.p1color)
	st.Players[1].Stores += r.Position.Store(r.spec.p1color.Flip())
	if r.Over() && r.Winner != toguz.NoSide {
		pst := &st.Players[0]
		if r.Winner != r.spec.p1color {
			pst = &st.Players[1]
		}
		if r.Winner == toguz.White {
			pst.WhiteWins++
		} else {
			pst.BlackWins++
		}
		pst.Wins++
	}
	st.Games = append(st.Games, r)
}

func playGame(ctx context.Context, c *Config, g gameSpec) (Result, error) {
	p1, close1, err := c.P1(g.seed)
	if err != nil {
		return Result{}, fmt.Errorf("p1: %w", err)
	}
	if close1 != nil {
		defer close1()
	}
	p2, close2, err := c.P2(g.seed + 1)
	if err != nil {
		return Result{}, fmt.Errorf("p2: %w", err)
	}
	if close2 != nil {
		defer close2()
	}
	white, black := p1, p2
	if g.p1color != toguz.White {
		white, black = black, white
	}

	p := g.opening
	var ms []int
	for i := 0; c.Cutoff <= 0 || i < c.Cutoff; i++ {
		if over, _ := p.GameOver(); over {
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		player := white
		if p.ToMove() == toguz.Black {
			player = black
		}
		mctx, cancel := ctx, context.CancelFunc(func() {})
		if c.Limit != 0 {
			mctx, cancel = context.WithTimeout(ctx, c.Limit)
		}
		pit, ok := player.GetMove(mctx, p)
		cancel()
		if !ok {
			return Result{}, fmt.Errorf("%s found no move at ply %d", p.ToMove(), p.MoveNumber())
		}
		next, err := p.Move(p.ToMove(), pit)
		if err != nil {
			return Result{}, fmt.Errorf("illegal move: %w", err)
		}
		p = next
		ms = append(ms, pit)
	}
	_, winner := p.GameOver()
	return Result{
		spec:     g,
		Initial:  g.opening,
		Position: p,
		Moves:    ms,
		Winner:   winner,
	}, nil
}
