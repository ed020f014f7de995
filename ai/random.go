package ai

import (
	"context"
	"time"

	"golang.org/x/exp/rand"

	"github.com/kazanlab/toguz/toguz"
)

type RandomAI struct {
	r *rand.Rand
}

func (r *RandomAI) GetMove(ctx context.Context, p *toguz.Position) (int, bool) {
	return r.choose(p)
}

func (r *RandomAI) choose(p *toguz.Position) (int, bool) {
	moves := p.LegalMoves(p.ToMove())
	if len(moves) == 0 {
		return 0, false
	}
	return moves[r.r.Intn(len(moves))], true
}

func NewRandom(seed uint64) *RandomAI {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomAI{
		r: rand.New(rand.NewSource(seed)),
	}
}
