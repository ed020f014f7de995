package toguz

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove = errors.New("illegal move")

	ErrGameOver  = errors.New("game is over")
	ErrNotToMove = errors.New("not your move")
	ErrPitRange  = errors.New("pit out of range")
	ErrNotOwner  = errors.New("pit belongs to the opponent")
	ErrTuzSource = errors.New("cannot move from a tuz")
	ErrEmptyPit  = errors.New("pit is empty")
)

// IllegalMoveError reports a rejected move. The position the move was
// attempted on is left unchanged.
type IllegalMoveError struct {
	Side Side
	Pit  int
	Err  error
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move: %s pit %d: %v", e.Side, e.Pit, e.Err)
}

func (e *IllegalMoveError) Unwrap() error {
	return e.Err
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

func (p *Position) check(side Side, pit int) error {
	var err error
	switch {
	case p.over:
		err = ErrGameOver
	case side != p.toMove:
		err = ErrNotToMove
	case pit < 0 || pit >= Pits:
		err = ErrPitRange
	case Owner(pit) != side:
		err = ErrNotOwner
	case p.IsTuz(pit):
		err = ErrTuzSource
	case p.pits[pit] == 0:
		err = ErrEmptyPit
	default:
		return nil
	}
	return &IllegalMoveError{Side: side, Pit: pit, Err: err}
}

// LegalMoves returns the pits side may sow from, in ascending order. It
// is empty when it is not side's turn or the game is over.
func (p *Position) LegalMoves(side Side) []int {
	if p.over || side != p.toMove {
		return nil
	}
	return p.AllMoves(make([]int, 0, RowPits))
}

// AllMoves appends the legal moves of the side to move onto moves.
func (p *Position) AllMoves(moves []int) []int {
	if p.over {
		return moves
	}
	start := RowStart(p.toMove)
	for i := start; i < start+RowPits; i++ {
		if p.pits[i] > 0 && !p.IsTuz(i) {
			moves = append(moves, i)
		}
	}
	return moves
}

func (p *Position) Move(side Side, pit int) (*Position, error) {
	if err := p.check(side, pit); err != nil {
		return nil, err
	}
	next := p.clone()
	next.play(side, pit, nil)
	return next, nil
}

// Trace executes a move like Move and also returns the ordered list of
// effects the move had, for step-by-step display.
func (p *Position) Trace(side Side, pit int) (*Position, []Step, error) {
	if err := p.check(side, pit); err != nil {
		return nil, nil, err
	}
	next := p.clone()
	steps := make([]Step, 0, p.pits[pit]+4)
	next.play(side, pit, &steps)
	return next, steps, nil
}

func record(steps *[]Step, s Step) {
	if steps != nil {
		*steps = append(*steps, s)
	}
}

func (p *Position) play(side Side, pit int, steps *[]Step) {
	opp := side.Flip()
	stones := p.pits[pit]
	p.pits[pit] = 0
	record(steps, Step{Kind: Pickup, Pit: pit, Side: side, Stones: stones})

	sow := stones
	if stones > 1 {
		p.pits[pit] = 1
		record(steps, Step{Kind: Sow, Pit: pit, Side: side, Stones: 1})
		sow--
	}

	// landing is the last pit whose count the sowing incremented, or -1
	// when the final stone went to a tuz.
	landing := -1
	cur := pit
	for ; sow > 0; sow-- {
		cur = (cur + 1) % Pits
		if owner := p.TuzOwner(cur); owner != NoSide {
			p.stores[owner]++
			landing = -1
			record(steps, Step{Kind: TuzCredit, Pit: cur, Side: owner, Stones: 1})
			continue
		}
		p.pits[cur]++
		landing = cur
		record(steps, Step{Kind: Sow, Pit: cur, Side: side, Stones: 1})
	}

	rec := MoveRecord{Side: side, Pit: pit}
	if landing >= 0 && Owner(landing) == opp {
		n := p.pits[landing]
		switch {
		case n%2 == 0:
			p.pits[landing] = 0
			p.stores[side] += n
			rec.Captured = n
			record(steps, Step{Kind: Capture, Pit: landing, Side: side, Stones: n})
		case n == 3 && p.canClaim(side, landing):
			p.tuz[side] = landing
			p.pits[landing] = 0
			p.stores[side] += n
			rec.TuzCreated = true
			record(steps, Step{Kind: TuzClaim, Pit: landing, Side: side, Stones: n})
		}
	}

	p.log = append(p.log, rec)
	p.move++
	p.toMove = opp
	p.checkOver(steps)
}

// canClaim reports whether side may claim pit, an opponent pit holding
// three stones, as its tuz.
func (p *Position) canClaim(side Side, pit int) bool {
	if p.tuz[side] != NoTuz {
		return false
	}
	opp := side.Flip()
	if pit == LastPit(opp) {
		return false
	}
	if t := p.tuz[opp]; t != NoTuz && Opposite(pit) == t {
		return false
	}
	return true
}

func (p *Position) checkOver(steps *[]Step) {
	if p.hasMoves(White) && p.hasMoves(Black) {
		return
	}
	p.over = true
	for _, s := range []Side{White, Black} {
		if t := p.tuz[s]; t != NoTuz {
			p.sweep(t, s, steps)
		}
	}
	for i := range p.pits {
		p.sweep(i, Owner(i), steps)
	}
	switch {
	case p.stores[White] > p.stores[Black]:
		p.winner = White
	case p.stores[Black] > p.stores[White]:
		p.winner = Black
	default:
		p.winner = NoSide
	}
}

func (p *Position) sweep(pit int, to Side, steps *[]Step) {
	n := p.pits[pit]
	if n == 0 {
		return
	}
	p.pits[pit] = 0
	p.stores[to] += n
	record(steps, Step{Kind: Sweep, Pit: pit, Side: to, Stones: n})
}
