package tkn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kazanlab/toguz/toguz"
)

// ParsePosition reads a position in the form
//
//	<white row>/<black row> <white store>-<black store> <white tuz>-<black tuz> <w|b> <ply>
//
// Rows list nine pit counts separated by commas. A tuz is written as its
// 1-based number within the opponent's row, or x if unclaimed.
func ParsePosition(s string) (*toguz.Position, error) {
	words := strings.Fields(s)
	if len(words) != 5 {
		return nil, errors.New("bad position: wrong number of words")
	}
	var st toguz.State

	rows := strings.Split(words[0], "/")
	if len(rows) != 2 {
		return nil, fmt.Errorf("bad rows: %q", words[0])
	}
	for r, row := range rows {
		bits := strings.Split(row, ",")
		if len(bits) != toguz.RowPits {
			return nil, fmt.Errorf("row %d bad length: %d", r+1, len(bits))
		}
		for i, b := range bits {
			n, err := strconv.Atoi(b)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad pit count: %q", b)
			}
			st.Pits[r*toguz.RowPits+i] = n
		}
	}

	var err error
	st.Stores[toguz.White], st.Stores[toguz.Black], err = parsePair(words[1], strconv.Atoi)
	if err != nil {
		return nil, fmt.Errorf("bad stores: %w", err)
	}
	st.Tuz[toguz.White], st.Tuz[toguz.Black], err = parsePair(words[2], parseTuzNumber)
	if err != nil {
		return nil, fmt.Errorf("bad tuz: %w", err)
	}
	if st.Tuz[toguz.White] != toguz.NoTuz {
		st.Tuz[toguz.White] += toguz.RowStart(toguz.Black)
	}

	switch words[3] {
	case "w":
		st.ToMove = toguz.White
	case "b":
		st.ToMove = toguz.Black
	default:
		return nil, fmt.Errorf("bad side to move: %s", words[3])
	}
	st.Move, err = strconv.Atoi(words[4])
	if err != nil || st.Move < 0 {
		return nil, fmt.Errorf("bad ply: %s", words[4])
	}
	return toguz.FromState(st)
}

func parsePair(s string, parse func(string) (int, error)) (int, int, error) {
	bits := strings.Split(s, "-")
	if len(bits) != 2 {
		return 0, 0, fmt.Errorf("%q: expected two values", s)
	}
	a, err := parse(bits[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parse(bits[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// parseTuzNumber returns the 0-based offset within a row, or NoTuz.
func parseTuzNumber(s string) (int, error) {
	if s == "x" {
		return toguz.NoTuz, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > toguz.RowPits {
		return 0, fmt.Errorf("bad tuz number: %q", s)
	}
	return n - 1, nil
}

func FormatPosition(p *toguz.Position) string {
	var rows []string
	for _, side := range []toguz.Side{toguz.White, toguz.Black} {
		var bits []string
		for i := 0; i < toguz.RowPits; i++ {
			bits = append(bits, strconv.Itoa(p.Pit(toguz.RowStart(side)+i)))
		}
		rows = append(rows, strings.Join(bits, ","))
	}
	toMove := "w"
	if p.ToMove() == toguz.Black {
		toMove = "b"
	}
	return fmt.Sprintf("%s %d-%d %s-%s %s %d",
		strings.Join(rows, "/"),
		p.Store(toguz.White), p.Store(toguz.Black),
		formatTuz(p, toguz.White), formatTuz(p, toguz.Black),
		toMove, p.MoveNumber())
}

func formatTuz(p *toguz.Position, side toguz.Side) string {
	t, ok := p.Tuz(side)
	if !ok {
		return "x"
	}
	return strconv.Itoa(t - toguz.RowStart(side.Flip()) + 1)
}
