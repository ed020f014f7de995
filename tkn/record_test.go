package tkn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazanlab/toguz/toguz"
)

const testGame = `
[White "alice"]
[Black "bob"]
[Date "2024.05.01"]

1. 9x 1x {quiet}
2. 2x 5
`

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(strings.NewReader(testGame))
	require.NoError(t, err)
	assert.Equal(t, []Tag{
		{"White", "alice"},
		{"Black", "bob"},
		{"Date", "2024.05.01"},
	}, rec.Tags)

	ops := []Op{
		&MoveNumber{opCommon{"1."}, 1},
		&Move{opCommon{"9x"}, 9, "x"},
		&Move{opCommon{"1x"}, 1, "x"},
		&Comment{opCommon{"{quiet}"}, "quiet"},
		&MoveNumber{opCommon{"2."}, 2},
		&Move{opCommon{"2x"}, 2, "x"},
		&Move{opCommon{"5"}, 5, ""},
	}
	assert.Equal(t, ops, rec.Ops)
	assert.Len(t, rec.Moves(), 4)
}

func TestPositionAtMove(t *testing.T) {
	rec, err := ParseRecord(strings.NewReader(testGame))
	require.NoError(t, err)

	p, err := rec.PositionAtMove(0)
	require.NoError(t, err)
	assert.True(t, p.SameBoard(toguz.New()))

	p, err = rec.PositionAtMove(1)
	require.NoError(t, err)
	assert.Equal(t, "9,9,9,9,9,9,9,9,1/10,10,10,10,10,10,10,0,9 10-0 x-x b 1", FormatPosition(p))

	p, err = rec.PositionAtMove(4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.MoveNumber())

	_, err = rec.PositionAtMove(5)
	assert.ErrorIs(t, err, ErrNoSuchMove)
}

func TestReplayIllegal(t *testing.T) {
	// Black's eighth pit is empty after White's opening capture.
	rec, err := ParseRecord(strings.NewReader("1. 9 8"))
	require.NoError(t, err)
	ps, err := rec.Replay()
	assert.ErrorIs(t, err, toguz.ErrEmptyPit)
	assert.Len(t, ps, 2)
}

func TestNewRecordRoundTrip(t *testing.T) {
	pits := []int{8, 9, 1, 13}
	rec, err := NewRecord(toguz.New(), pits)
	require.NoError(t, err)
	rec.SetTag("White", "alice")
	rec.SetTag("Black", "bob")

	text := FormatRecord(rec)
	assert.True(t, strings.HasPrefix(text, "[White \"alice\"]\n[Black \"bob\"]\n\n1. 9x 1x\n2. 2x 5"), text)

	back, err := ParseRecord(strings.NewReader(text))
	require.NoError(t, err)
	ps, err := back.Replay()
	require.NoError(t, err)
	require.Len(t, ps, len(pits)+1)

	want := toguz.New()
	for _, pit := range pits {
		want, err = want.Move(want.ToMove(), pit)
		require.NoError(t, err)
	}
	assert.True(t, want.SameBoard(ps[len(pits)]))
}

func TestNewRecordFromPosition(t *testing.T) {
	start, err := ParsePosition("9,9,9,9,9,9,9,9,1/10,10,10,10,10,10,10,0,9 10-0 x-x b 1")
	require.NoError(t, err)
	rec, err := NewRecord(start, []int{9})
	require.NoError(t, err)
	assert.Equal(t, FormatPosition(start), rec.FindTag("Position"))

	back, err := ParseRecord(strings.NewReader(FormatRecord(rec)))
	require.NoError(t, err)
	p, err := back.PositionAtMove(1)
	require.NoError(t, err)
	assert.Equal(t, toguz.White, p.ToMove())
}

func TestRecordResult(t *testing.T) {
	st := toguz.State{ToMove: toguz.White, Tuz: [2]int{toguz.NoTuz, toguz.NoTuz}}
	st.Pits[8] = 1
	st.Pits[9] = 1
	st.Stores = [2]int{90, 70}
	start, err := toguz.FromState(st)
	require.NoError(t, err)

	rec, err := NewRecord(start, []int{8})
	require.NoError(t, err)
	assert.Equal(t, "1-0", rec.FindTag("Result"))
	text := FormatRecord(rec)
	assert.Contains(t, text, "\n1-0\n")

	back, err := ParseRecord(strings.NewReader(text))
	require.NoError(t, err)
	last := back.Ops[len(back.Ops)-1]
	assert.Equal(t, &Result{opCommon{"1-0"}, toguz.White}, last)
}
