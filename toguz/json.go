package toguz

import (
	"encoding/json"
	"errors"
	"fmt"
)

var _ interface {
	json.Marshaler
	json.Unmarshaler
} = &Position{}

// Snapshot is the JSON form of a Position exchanged between peers. The
// pointer fields distinguish absent values from zero values so that a
// relay can reject malformed payloads before interpreting them.
type Snapshot struct {
	Pits          []int        `json:"pits"`
	Kazans        *Kazans      `json:"kazans"`
	Tuz           TuzPits      `json:"tuz"`
	CurrentPlayer Side         `json:"currentPlayer"`
	MoveHistory   []MoveRecord `json:"moveHistory"`
	GameOver      bool         `json:"gameOver"`
	Winner        *string      `json:"winner"`
}

type Kazans struct {
	White *int `json:"white"`
	Black *int `json:"black"`
}

type TuzPits struct {
	White *int `json:"white"`
	Black *int `json:"black"`
}

const drawResult = "draw"

func intp(i int) *int {
	return &i
}

func (p *Position) Snapshot() *Snapshot {
	s := &Snapshot{
		Pits: append([]int(nil), p.pits[:]...),
		Kazans: &Kazans{
			White: intp(p.stores[White]),
			Black: intp(p.stores[Black]),
		},
		CurrentPlayer: p.toMove,
		MoveHistory:   p.Log(),
		GameOver:      p.over,
	}
	if s.MoveHistory == nil {
		s.MoveHistory = []MoveRecord{}
	}
	if t, ok := p.Tuz(White); ok {
		s.Tuz.White = intp(t)
	}
	if t, ok := p.Tuz(Black); ok {
		s.Tuz.Black = intp(t)
	}
	if p.over {
		w := drawResult
		if p.winner != NoSide {
			w = p.winner.String()
		}
		s.Winner = &w
	}
	return s
}

var ErrBadSnapshot = errors.New("malformed snapshot")

// Position converts s into a validated Position.
func (s *Snapshot) Position() (*Position, error) {
	if len(s.Pits) != Pits {
		return nil, fmt.Errorf("%w: %d pits", ErrBadSnapshot, len(s.Pits))
	}
	if s.Kazans == nil || s.Kazans.White == nil || s.Kazans.Black == nil {
		return nil, fmt.Errorf("%w: missing kazans", ErrBadSnapshot)
	}
	st := State{
		Stores: [2]int{*s.Kazans.White, *s.Kazans.Black},
		Tuz:    [2]int{NoTuz, NoTuz},
		ToMove: s.CurrentPlayer,
		Log:    s.MoveHistory,
	}
	copy(st.Pits[:], s.Pits)
	if s.Tuz.White != nil {
		st.Tuz[White] = *s.Tuz.White
	}
	if s.Tuz.Black != nil {
		st.Tuz[Black] = *s.Tuz.Black
	}
	p, err := FromState(st)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	return p, nil
}

func (p *Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Snapshot())
}

func (p *Position) UnmarshalJSON(bs []byte) error {
	var s Snapshot
	if err := json.Unmarshal(bs, &s); err != nil {
		return err
	}
	np, err := s.Position()
	if err != nil {
		return err
	}
	*p = *np
	return nil
}
