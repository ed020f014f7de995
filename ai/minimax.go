package ai

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/toguz"
)

// EvaluationFunc scores p from side's point of view; larger is better
// for side.
type EvaluationFunc func(p *toguz.Position, side toguz.Side) float64

type Stats struct {
	Depth     int
	Visited   uint64
	Evaluated uint64
	Terminal  uint64
	// Stuck counts interior nodes whose side to act had no move.
	Stuck   uint64
	Cutoffs uint64
}

type MinimaxConfig struct {
	Depth int
	Prune bool
	Debug int

	Evaluate EvaluationFunc
}

// ConfigForTier returns the search settings of the medium and hard
// tiers: a two-ply full-width search, and a four-ply alpha-beta search.
func ConfigForTier(t Tier) MinimaxConfig {
	if t == Hard {
		return MinimaxConfig{Depth: 4, Prune: true}
	}
	return MinimaxConfig{Depth: 2}
}

type MinimaxAI struct {
	cfg MinimaxConfig
	st  Stats

	evaluate EvaluationFunc
}

func NewMinimax(cfg MinimaxConfig) *MinimaxAI {
	m := &MinimaxAI{cfg: cfg}
	if m.cfg.Depth <= 0 {
		m.cfg.Depth = 1
	}
	m.evaluate = cfg.Evaluate
	if m.evaluate == nil {
		m.evaluate = DefaultEvaluate
	}
	return m
}

func formatpv(side toguz.Side, ms []int) string {
	var out strings.Builder
	out.WriteString("[")
	for i, m := range ms {
		if i != 0 {
			out.WriteString(" ")
		}
		out.WriteString(strconv.Itoa(m - toguz.RowStart(side) + 1))
		side = side.Flip()
	}
	out.WriteString("]")
	return out.String()
}

type result struct {
	pit int
	ok  bool
}

// GetMove searches on its own goroutine. If ctx ends first the search is
// left to finish and its answer is thrown away.
func (m *MinimaxAI) GetMove(ctx context.Context, p *toguz.Position) (int, bool) {
	// A fresh searcher keeps an abandoned search from racing the next one
	// on m's stats.
	s := NewMinimax(m.cfg)
	done := make(chan result, 1)
	go func() {
		pv, _, _ := s.Analyze(p)
		if len(pv) == 0 {
			done <- result{}
			return
		}
		done <- result{pit: pv[0], ok: true}
	}()
	select {
	case r := <-done:
		return r.pit, r.ok
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Int("ply", p.MoveNumber()).Msg("search abandoned")
		return 0, false
	}
}

// Analyze searches p for the side to move and returns the principal
// variation, its value from the mover's point of view, and search
// statistics. The variation is empty if the mover has no move.
func (m *MinimaxAI) Analyze(p *toguz.Position) ([]int, float64, Stats) {
	m.st = Stats{Depth: m.cfg.Depth}
	side := p.ToMove()
	start := time.Now()

	moves := p.LegalMoves(side)
	if len(moves) == 0 {
		m.st.Evaluated++
		return nil, m.evaluate(p, side), m.st
	}

	var pv []int
	best := math.Inf(-1)
	α, β := math.Inf(-1), math.Inf(1)
	for _, pit := range moves {
		child := m.play(p, pit)
		v, rest := m.minimax(child, side, m.cfg.Depth-1, α, β)
		// Strictly greater: the first move found keeps a tie.
		if v > best || pv == nil {
			best = v
			pv = append([]int{pit}, rest...)
		}
		if m.cfg.Prune && best > α {
			α = best
		}
	}

	if m.cfg.Debug > 0 {
		log.Debug().
			Int("depth", m.cfg.Depth).
			Bool("prune", m.cfg.Prune).
			Float64("val", best).
			Str("pv", formatpv(side, pv)).
			Dur("time", time.Since(start)).
			Uint64("visited", m.st.Visited).
			Uint64("evaluated", m.st.Evaluated).
			Uint64("cut", m.st.Cutoffs).
			Msg("minimax")
	}
	return pv, best, m.st
}

func (m *MinimaxAI) play(p *toguz.Position, pit int) *toguz.Position {
	child, err := p.Move(p.ToMove(), pit)
	if err != nil {
		// pit came from the move generator
		panic("minimax: generated move rejected: " + err.Error())
	}
	return child
}

func (m *MinimaxAI) minimax(
	p *toguz.Position,
	side toguz.Side,
	depth int,
	α, β float64) (float64, []int) {
	over, _ := p.GameOver()
	if depth == 0 || over {
		m.st.Evaluated++
		if over {
			m.st.Terminal++
		}
		return m.evaluate(p, side), nil
	}

	var buf [toguz.RowPits]int
	moves := p.AllMoves(buf[:0])
	if len(moves) == 0 {
		m.st.Stuck++
		m.st.Evaluated++
		return m.evaluate(p, side), nil
	}
	m.st.Visited++

	maximizing := p.ToMove() == side
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	var pv []int
	for _, pit := range moves {
		v, rest := m.minimax(m.play(p, pit), side, depth-1, α, β)
		if maximizing {
			if v > best || pv == nil {
				best = v
				pv = append([]int{pit}, rest...)
			}
			if best > α {
				α = best
			}
		} else {
			if v < best || pv == nil {
				best = v
				pv = append([]int{pit}, rest...)
			}
			if best < β {
				β = best
			}
		}
		if m.cfg.Prune && β <= α {
			m.st.Cutoffs++
			break
		}
	}
	return best, pv
}
