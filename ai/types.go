package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kazanlab/toguz/toguz"
)

// Player picks a pit for the side to move in p. The boolean is false when
// there is no move to make.
type Player interface {
	GetMove(ctx context.Context, p *toguz.Position) (int, bool)
}

type Tier int

const (
	Easy   Tier = 1
	Medium Tier = 2
	Hard   Tier = 3
)

func (t Tier) String() string {
	switch t {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "1", "easy":
		return Easy, nil
	case "2", "medium":
		return Medium, nil
	case "3", "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown tier: %q", s)
}

type PlayerConfig struct {
	Tier Tier
	// Seed seeds the easy tier; zero picks a seed from the clock.
	Seed  uint64
	Debug int
}

func NewPlayer(cfg PlayerConfig) Player {
	if cfg.Tier == Easy {
		return NewRandom(cfg.Seed)
	}
	mc := ConfigForTier(cfg.Tier)
	mc.Debug = cfg.Debug
	return NewMinimax(mc)
}

// ChooseMove returns the move tier would play for side. It reports false
// if it is not side's turn or side has no legal move.
func ChooseMove(p *toguz.Position, side toguz.Side, tier Tier) (int, bool) {
	if p.ToMove() != side {
		return 0, false
	}
	if tier == Easy {
		return NewRandom(0).choose(p)
	}
	pv, _, _ := NewMinimax(ConfigForTier(tier)).Analyze(p)
	if len(pv) == 0 {
		return 0, false
	}
	return pv[0], true
}
