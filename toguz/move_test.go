package toguz

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// fill returns a State with every pit at 9 stones except those in
// overrides; the difference is assigned to the stores so that the total
// stays at 162.
func fill(overrides map[int]int, blackStore int) State {
	s := State{Tuz: [2]int{NoTuz, NoTuz}, ToMove: White}
	total := 0
	for i := range s.Pits {
		s.Pits[i] = InitialStones
		if n, ok := overrides[i]; ok {
			s.Pits[i] = n
		}
		total += s.Pits[i]
	}
	s.Stores[Black] = blackStore
	s.Stores[White] = TotalStones - total - blackStore
	return s
}

func mustState(t *testing.T, s State) *Position {
	t.Helper()
	p, err := FromState(s)
	require.NoError(t, err)
	return p
}

func conserved(p *Position) bool {
	total := p.Store(White) + p.Store(Black)
	for i := 0; i < Pits; i++ {
		total += p.Pit(i)
	}
	return total == TotalStones
}

func TestInitialMove(t *testing.T) {
	p := New()
	next, err := p.Move(White, 0)
	require.NoError(t, err)

	want := []int{1, 10, 10, 10, 10, 10, 10, 10, 10}
	for i, n := range want {
		assert.Equal(t, n, next.Pit(i), "pit %d", i)
	}
	for i := RowPits; i < Pits; i++ {
		assert.Equal(t, 9, next.Pit(i), "pit %d", i)
	}
	assert.Equal(t, 0, next.Store(White))
	assert.Equal(t, 0, next.Store(Black))
	assert.Equal(t, Black, next.ToMove())
	assert.Equal(t, 1, next.MoveNumber())
	assert.Equal(t, []MoveRecord{{Side: White, Pit: 0}}, next.Log())

	// the input is untouched
	assert.Equal(t, 9, p.Pit(0))
	assert.Equal(t, White, p.ToMove())
}

func TestCapture(t *testing.T) {
	p := mustState(t, fill(map[int]int{13: 1}, 0))
	storeBefore := p.Store(White)

	next, err := p.Move(White, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Pit(13))
	assert.Equal(t, storeBefore+2, next.Store(White))
	assert.Equal(t, 1, next.Pit(5))
	for i := 6; i <= 12; i++ {
		assert.Equal(t, 10, next.Pit(i), "pit %d", i)
	}
	log := next.Log()
	assert.Equal(t, 2, log[len(log)-1].Captured)
	assert.True(t, conserved(next))
}

func TestTuzClaim(t *testing.T) {
	p := mustState(t, fill(map[int]int{13: 2}, 0))
	storeBefore := p.Store(White)

	next, err := p.Move(White, 5)
	require.NoError(t, err)
	tuz, ok := next.Tuz(White)
	require.True(t, ok)
	assert.Equal(t, 13, tuz)
	assert.Equal(t, 0, next.Pit(13))
	assert.Equal(t, storeBefore+3, next.Store(White))
	assert.True(t, next.Log()[0].TuzCreated)
	assert.NotContains(t, next.LegalMoves(Black), 13)

	// stones later sown through the tuz go to its owner's store
	whiteStore := next.Store(White)
	after, err := next.Move(Black, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Pit(13))
	assert.Equal(t, whiteStore+1, after.Store(White))
	assert.Equal(t, 10, after.Pit(14))
	assert.True(t, conserved(after))
}

func TestTuzClaimExclusions(t *testing.T) {
	cases := []struct {
		name  string
		state func() State
		pit   int
	}{
		{"black last pit", func() State {
			// 10 stones from pit 8 end on 17
			return fill(map[int]int{8: 10, 17: 2}, 0)
		}, 8},
		{"white last pit", func() State {
			s := fill(map[int]int{17: 10, 8: 2}, 0)
			s.ToMove = Black
			return s
		}, 17},
		{"opposite tuz", func() State {
			s := fill(map[int]int{13: 2, 4: 0}, 0)
			s.Tuz[Black] = 4
			return s
		}, 5},
		{"already has tuz", func() State {
			s := fill(map[int]int{13: 2, 10: 0}, 0)
			s.Tuz[White] = 10
			return s
		}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustState(t, tc.state())
			side := p.ToMove()
			before, _ := p.Tuz(side)
			next, steps, err := p.Trace(side, tc.pit)
			require.NoError(t, err)
			after, _ := next.Tuz(side)
			assert.Equal(t, before, after)
			for _, s := range steps {
				assert.NotEqual(t, TuzClaim, s.Kind)
			}
			assert.True(t, conserved(next))
		})
	}
}

func TestLastStoneOnTuz(t *testing.T) {
	s := fill(map[int]int{12: 1, 13: 0}, 7)
	s.Tuz[White] = 13
	p := mustState(t, s)
	whiteStore := p.Store(White)

	next, steps, err := p.Trace(White, 5)
	require.NoError(t, err)
	// pit 12 reaches an even count but is not the landing pit
	assert.Equal(t, 2, next.Pit(12))
	assert.Equal(t, whiteStore+1, next.Store(White))
	last := steps[len(steps)-1]
	assert.Equal(t, TuzCredit, last.Kind)
	assert.Equal(t, 13, last.Pit)
}

func TestSingleStone(t *testing.T) {
	p := mustState(t, fill(map[int]int{3: 1, 4: 9}, 0))
	next, err := p.Move(White, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Pit(3))
	assert.Equal(t, 10, next.Pit(4))
	assert.True(t, conserved(next))
}

func TestWrapAround(t *testing.T) {
	p := mustState(t, fill(map[int]int{0: 20, 1: 0, 2: 0}, 0))
	next, err := p.Move(White, 0)
	require.NoError(t, err)
	// 1 back into 0, 17 more around the ring, the last two reaching 0 and 1
	assert.Equal(t, 2, next.Pit(0))
	assert.Equal(t, 2, next.Pit(1))
	assert.Equal(t, 1, next.Pit(2))
	assert.Equal(t, 10, next.Pit(17))
	assert.True(t, conserved(next))
}

func TestGameEnd(t *testing.T) {
	s := State{Tuz: [2]int{NoTuz, NoTuz}, ToMove: White}
	s.Pits[0] = 10
	s.Pits[8] = 1
	s.Pits[9] = 1
	s.Stores = [2]int{70, 80}
	p := mustState(t, s)
	over, _ := p.GameOver()
	require.False(t, over)

	next, err := p.Move(White, 8)
	require.NoError(t, err)
	over, winner := next.GameOver()
	require.True(t, over)
	assert.Equal(t, White, winner)
	for i := 0; i < Pits; i++ {
		assert.Equal(t, 0, next.Pit(i), "pit %d", i)
	}
	assert.Equal(t, 82, next.Store(White))
	assert.Equal(t, 80, next.Store(Black))
	assert.Empty(t, next.LegalMoves(next.ToMove()))
	d := next.WinDetails()
	assert.Equal(t, WinDetails{Winner: White, WhiteStore: 82, BlackStore: 80}, d)
}

func TestDraw(t *testing.T) {
	s := State{Tuz: [2]int{NoTuz, NoTuz}, ToMove: White}
	s.Pits[8] = 1
	s.Pits[9] = 1
	s.Stores = [2]int{79, 81}
	p := mustState(t, s)
	next, err := p.Move(White, 8)
	require.NoError(t, err)
	over, winner := next.GameOver()
	assert.True(t, over)
	assert.Equal(t, NoSide, winner)
}

func TestIllegalMoves(t *testing.T) {
	s := fill(map[int]int{2: 0, 13: 0}, 0)
	s.Tuz[Black] = 4
	s.Stores[Black] += s.Pits[4]
	s.Pits[4] = 0
	p := mustState(t, s)

	over := New()
	over.over = true

	cases := []struct {
		p    *Position
		side Side
		pit  int
		err  error
	}{
		{p, Black, 10, ErrNotToMove},
		{p, White, -1, ErrPitRange},
		{p, White, 18, ErrPitRange},
		{p, White, 10, ErrNotOwner},
		{p, White, 2, ErrEmptyPit},
		{p, White, 4, ErrTuzSource},
		{over, White, 0, ErrGameOver},
	}
	for _, tc := range cases {
		before := tc.p.Snapshot()
		next, err := tc.p.Move(tc.side, tc.pit)
		assert.Nil(t, next)
		assert.ErrorIs(t, err, ErrIllegalMove)
		assert.ErrorIs(t, err, tc.err)
		var ime *IllegalMoveError
		if assert.True(t, errors.As(err, &ime)) {
			assert.Equal(t, tc.pit, ime.Pit)
		}
		assert.Equal(t, before, tc.p.Snapshot())
	}
}

func TestLegalMoves(t *testing.T) {
	s := fill(map[int]int{2: 0}, 0)
	s.Tuz[Black] = 4
	s.Stores[Black] += s.Pits[4]
	s.Pits[4] = 0
	p := mustState(t, s)
	assert.Equal(t, []int{0, 1, 3, 5, 6, 7, 8}, p.LegalMoves(White))
	assert.Empty(t, p.LegalMoves(Black))
	assert.Equal(t, []int{0, 1, 3, 5, 6, 7, 8}, p.AllMoves(nil))
}

func TestDeterminism(t *testing.T) {
	p := New()
	a, err := p.Move(White, 3)
	require.NoError(t, err)
	b, err := p.Move(White, 3)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b))
}

func TestTraceMatchesMove(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	p := New()
	for i := 0; i < 200; i++ {
		if over, _ := p.GameOver(); over {
			break
		}
		moves := p.AllMoves(nil)
		m := moves[r.Intn(len(moves))]
		moved, err := p.Move(p.ToMove(), m)
		require.NoError(t, err)
		traced, steps, err := p.Trace(p.ToMove(), m)
		require.NoError(t, err)
		require.True(t, reflect.DeepEqual(moved, traced))

		b := p.Board()
		for _, s := range steps {
			b.Apply(s)
		}
		require.Equal(t, moved.Board(), b)
		p = moved
	}
}

func TestRandomGames(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for g := 0; g < 50; g++ {
		p := New()
		var claimed [2]int
		claimed[White], claimed[Black] = NoTuz, NoTuz
		for ply := 0; ply < 5000; ply++ {
			if over, _ := p.GameOver(); over {
				break
			}
			mover := p.ToMove()
			moves := p.LegalMoves(mover)
			require.NotEmpty(t, moves)
			m := moves[r.Intn(len(moves))]
			next, steps, err := p.Trace(mover, m)
			require.NoError(t, err)

			require.True(t, conserved(next), "stone total")
			tw, _ := next.Tuz(White)
			tb, _ := next.Tuz(Black)
			if tw != NoTuz && tb != NoTuz {
				require.NotEqual(t, tw, tb)
				require.NotEqual(t, Opposite(tw), tb)
			}
			for _, side := range []Side{White, Black} {
				cur, ok := next.Tuz(side)
				if claimed[side] != NoTuz {
					require.Equal(t, claimed[side], cur, "tuz moved")
				} else if ok {
					claimed[side] = cur
				}
				if ok {
					require.Zero(t, next.Pit(cur), "stones in tuz")
				}
			}
			for _, s := range steps {
				if s.Kind == Capture || s.Kind == TuzClaim {
					require.NotEqual(t, mover, Owner(s.Pit), "self capture")
				}
			}
			p = next
		}
		over, winner := p.GameOver()
		if !over {
			t.Logf("game %d did not finish", g)
			continue
		}
		switch {
		case p.Store(White) > p.Store(Black):
			assert.Equal(t, White, winner)
		case p.Store(Black) > p.Store(White):
			assert.Equal(t, Black, winner)
		default:
			assert.Equal(t, NoSide, winner)
		}
	}
}
