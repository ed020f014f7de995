package toguz

import (
	"errors"
	"fmt"
)

const (
	Pits          = 18
	RowPits       = 9
	InitialStones = 9
	TotalStones   = Pits * InitialStones

	NoTuz = -1
)

// MoveRecord is one entry of a position's move log. Captured counts the
// stones taken by a capture; TuzCreated is set when the move claimed a tuz.
type MoveRecord struct {
	Side       Side `json:"player"`
	Pit        int  `json:"pitIndex"`
	Captured   int  `json:"captured"`
	TuzCreated bool `json:"tuzCreated"`
}

// Position is an immutable snapshot of a game. Every move produces a
// fresh Position; callers may share Positions freely.
type Position struct {
	pits   [Pits]int
	stores [2]int
	tuz    [2]int

	toMove Side
	move   int
	log    []MoveRecord

	over   bool
	winner Side
}

func New() *Position {
	p := &Position{
		tuz:    [2]int{NoTuz, NoTuz},
		toMove: White,
		winner: NoSide,
	}
	for i := range p.pits {
		p.pits[i] = InitialStones
	}
	return p
}

// State is the exported form of a Position, used to build positions
// from notation, the wire format, or tests.
type State struct {
	Pits   [Pits]int
	Stores [2]int
	// Tuz holds a pit index per side, or NoTuz.
	Tuz    [2]int
	ToMove Side
	Move   int
	Log    []MoveRecord
}

var (
	ErrBadTotal   = errors.New("stone total is not 162")
	ErrBadCount   = errors.New("negative stone count")
	ErrBadTuz     = errors.New("illegal tuz")
	ErrTuzStones  = errors.New("tuz pit holds stones")
	ErrBadToMove  = errors.New("bad side to move")
	ErrBadLogSide = errors.New("bad side in move log")
)

// FromState validates s and builds a Position from it. Terminal status is
// recomputed rather than trusted: a state in which a side has no playable
// stones is swept and scored exactly as the rules engine would do it.
func FromState(s State) (*Position, error) {
	if s.ToMove != White && s.ToMove != Black {
		return nil, ErrBadToMove
	}
	p := &Position{
		pits:   s.Pits,
		stores: s.Stores,
		tuz:    s.Tuz,
		toMove: s.ToMove,
		move:   s.Move,
		winner: NoSide,
	}
	if p.move < len(s.Log) {
		p.move = len(s.Log)
	}
	for _, r := range s.Log {
		if r.Side != White && r.Side != Black {
			return nil, ErrBadLogSide
		}
	}
	p.log = append([]MoveRecord(nil), s.Log...)

	total := p.stores[White] + p.stores[Black]
	if p.stores[White] < 0 || p.stores[Black] < 0 {
		return nil, ErrBadCount
	}
	for _, n := range p.pits {
		if n < 0 {
			return nil, ErrBadCount
		}
		total += n
	}
	if total != TotalStones {
		return nil, fmt.Errorf("%w: got %d", ErrBadTotal, total)
	}
	for _, side := range []Side{White, Black} {
		t := p.tuz[side]
		if t == NoTuz {
			continue
		}
		if t < 0 || t >= Pits || Owner(t) != side.Flip() || t == LastPit(side.Flip()) {
			return nil, fmt.Errorf("%w: %s tuz at %d", ErrBadTuz, side, t)
		}
		if p.pits[t] != 0 {
			return nil, fmt.Errorf("%w: pit %d", ErrTuzStones, t)
		}
	}
	if p.tuz[White] != NoTuz && p.tuz[Black] != NoTuz &&
		Opposite(p.tuz[White]) == p.tuz[Black] {
		return nil, fmt.Errorf("%w: tuz pits %d and %d are opposite",
			ErrBadTuz, p.tuz[White], p.tuz[Black])
	}
	p.checkOver(nil)
	return p, nil
}

// State returns a copy of p's fields.
func (p *Position) State() State {
	return State{
		Pits:   p.pits,
		Stores: p.stores,
		Tuz:    p.tuz,
		ToMove: p.toMove,
		Move:   p.move,
		Log:    p.Log(),
	}
}

// Owner returns the side whose row contains pit.
func Owner(pit int) Side {
	if pit < RowPits {
		return White
	}
	return Black
}

// Opposite returns the pit facing pit across the board.
func Opposite(pit int) int {
	return Pits - 1 - pit
}

// RowStart returns the first pit index of side's row.
func RowStart(s Side) int {
	if s == Black {
		return RowPits
	}
	return 0
}

// LastPit returns the ninth pit of side's row, which can never become a
// tuz.
func LastPit(s Side) int {
	return RowStart(s) + RowPits - 1
}

func (p *Position) Pit(i int) int {
	return p.pits[i]
}

func (p *Position) Store(s Side) int {
	return p.stores[s]
}

func (p *Position) Tuz(s Side) (int, bool) {
	t := p.tuz[s]
	return t, t != NoTuz
}

func (p *Position) IsTuz(pit int) bool {
	return p.tuz[White] == pit || p.tuz[Black] == pit
}

// TuzOwner returns the side that claimed pit as its tuz, or NoSide.
func (p *Position) TuzOwner(pit int) Side {
	switch pit {
	case p.tuz[White]:
		return White
	case p.tuz[Black]:
		return Black
	}
	return NoSide
}

func (p *Position) ToMove() Side {
	return p.toMove
}

func (p *Position) MoveNumber() int {
	return p.move
}

func (p *Position) Log() []MoveRecord {
	return append([]MoveRecord(nil), p.log...)
}

// RowStones counts the stones in side's row, excluding tuz pits.
func (p *Position) RowStones(s Side) int {
	n := 0
	for i := RowStart(s); i < RowStart(s)+RowPits; i++ {
		if !p.IsTuz(i) {
			n += p.pits[i]
		}
	}
	return n
}

func (p *Position) GameOver() (over bool, winner Side) {
	return p.over, p.winner
}

type WinDetails struct {
	Winner     Side
	WhiteStore int
	BlackStore int
}

func (p *Position) WinDetails() WinDetails {
	if !p.over {
		panic("WinDetails on a game not over")
	}
	return WinDetails{
		Winner:     p.winner,
		WhiteStore: p.stores[White],
		BlackStore: p.stores[Black],
	}
}

// SameBoard reports whether p and o agree on every pit, store and tuz.
func (p *Position) SameBoard(o *Position) bool {
	return p.pits == o.pits && p.stores == o.stores && p.tuz == o.tuz
}

func (p *Position) hasMoves(s Side) bool {
	for i := RowStart(s); i < RowStart(s)+RowPits; i++ {
		if p.pits[i] > 0 && !p.IsTuz(i) {
			return true
		}
	}
	return false
}

func (p *Position) clone() *Position {
	next := *p
	next.log = make([]MoveRecord, len(p.log), len(p.log)+1)
	copy(next.log, p.log)
	return &next
}
