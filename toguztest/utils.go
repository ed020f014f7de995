// Package toguztest holds helpers for building positions in tests.
package toguztest

import (
	"strings"

	"golang.org/x/exp/rand"

	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

// Play plays a space-separated list of row-relative moves from the
// starting position, alternating sides as the game does.
func Play(ms string) *toguz.Position {
	return PlayFrom(toguz.New(), ms)
}

func PlayFrom(p *toguz.Position, ms string) *toguz.Position {
	for _, b := range strings.Fields(ms) {
		pit, e := tkn.ParseMove(p.ToMove(), b)
		if e != nil {
			panic(e)
		}
		p, e = p.Move(p.ToMove(), pit)
		if e != nil {
			panic(e)
		}
	}
	return p
}

// Position parses a position in tkn notation.
func Position(s string) *toguz.Position {
	p, e := tkn.ParsePosition(s)
	if e != nil {
		panic(e)
	}
	return p
}

func FormatMoves(side toguz.Side, ms []int) string {
	var bits []string
	for _, m := range ms {
		bits = append(bits, tkn.FormatMove(side, m))
		side = side.Flip()
	}
	return strings.Join(bits, " ")
}

// RandomGame plays uniformly random moves from the start for at most
// plies plies and returns every position reached, the start included.
func RandomGame(r *rand.Rand, plies int) []*toguz.Position {
	p := toguz.New()
	out := []*toguz.Position{p}
	for i := 0; i < plies; i++ {
		moves := p.LegalMoves(p.ToMove())
		if len(moves) == 0 {
			break
		}
		var e error
		p, e = p.Move(p.ToMove(), moves[r.Intn(len(moves))])
		if e != nil {
			panic(e)
		}
		out = append(out, p)
	}
	return out
}
