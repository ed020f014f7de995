// Package infer reconstructs the move that turned one position into
// another, so that a display receiving whole positions can animate the
// sowing instead of jumping to the result.
package infer

import (
	"errors"
	"fmt"

	"github.com/kazanlab/toguz/toguz"
)

var ErrInference = errors.New("move inference failed")

// Failure explains why two positions could not be reconciled. Callers
// should show the new position without animation.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string {
	return "move inference failed: " + f.Reason
}

func (f *Failure) Is(target error) bool {
	return target == ErrInference
}

// Replay is a reconstructed move: the mover, the pit sown, and every
// effect in order.
type Replay struct {
	Side  toguz.Side
	Pit   int
	Steps []toguz.Step
	Final *toguz.Position

	start toguz.Board
}

// Frames returns the board after each step. The last frame matches
// Final.
func (r *Replay) Frames() []toguz.Board {
	out := make([]toguz.Board, 0, len(r.Steps))
	b := r.start
	for _, s := range r.Steps {
		b.Apply(s)
		out = append(out, b)
	}
	return out
}

// Infer finds the move the side to move in prev made to reach next.
// Every mover-owned pit that lost stones and was not a tuz is tried in
// ascending order; a candidate is accepted only if replaying it gives
// exactly next's pits, stores and tuz. When next's history extends
// prev's by one move, the candidate must also reproduce that record;
// two pits can end the game on identical boards.
func Infer(prev, next *toguz.Position) (*Replay, error) {
	if over, _ := prev.GameOver(); over {
		return nil, &Failure{"previous position is finished"}
	}
	side := prev.ToMove()
	start := toguz.RowStart(side)
	want, haveRecord := lastMove(prev, next)
	tried := 0
	for pit := start; pit < start+toguz.RowPits; pit++ {
		if prev.IsTuz(pit) || prev.Pit(pit) == 0 || next.Pit(pit) >= prev.Pit(pit) {
			continue
		}
		tried++
		final, steps, err := prev.Trace(side, pit)
		if err != nil {
			continue
		}
		if haveRecord && newestMove(final) != want {
			continue
		}
		if final.SameBoard(next) {
			return &Replay{
				Side:  side,
				Pit:   pit,
				Steps: steps,
				Final: final,
				start: prev.Board(),
			}, nil
		}
	}
	if tried == 0 {
		return nil, &Failure{fmt.Sprintf("no %s pit lost stones", side)}
	}
	return nil, &Failure{fmt.Sprintf("none of %d candidate pits reproduces the new position", tried)}
}

// lastMove returns next's newest move record if next's history is
// exactly prev's plus one move.
func lastMove(prev, next *toguz.Position) (toguz.MoveRecord, bool) {
	pl, nl := prev.Log(), next.Log()
	if len(nl) != len(pl)+1 {
		return toguz.MoveRecord{}, false
	}
	for i := range pl {
		if pl[i] != nl[i] {
			return toguz.MoveRecord{}, false
		}
	}
	return nl[len(nl)-1], true
}

func newestMove(p *toguz.Position) toguz.MoveRecord {
	l := p.Log()
	return l[len(l)-1]
}
