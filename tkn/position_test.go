package tkn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazanlab/toguz/toguz"
)

func TestFormatInitial(t *testing.T) {
	assert.Equal(t,
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 x-x w 0",
		FormatPosition(toguz.New()))
}

func TestPositionRoundTrip(t *testing.T) {
	cases := []string{
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 x-x w 0",
		"9,9,9,9,9,9,9,9,1/10,10,10,10,10,10,10,0,9 10-0 x-x b 1",
		"9,9,0,9,9,9,9,9,9/9,9,9,9,0,9,9,9,9 10-8 5-3 b 12",
	}
	for _, c := range cases {
		p, err := ParsePosition(c)
		require.NoError(t, err, c)
		assert.Equal(t, c, FormatPosition(p))
	}
}

func TestParsePositionTuz(t *testing.T) {
	p, err := ParsePosition("9,9,0,9,9,9,9,9,9/9,9,9,9,0,9,9,9,9 10-8 5-3 b 12")
	require.NoError(t, err)
	wt, ok := p.Tuz(toguz.White)
	assert.True(t, ok)
	assert.Equal(t, 13, wt)
	bt, ok := p.Tuz(toguz.Black)
	assert.True(t, ok)
	assert.Equal(t, 2, bt)
	assert.Equal(t, toguz.Black, p.ToMove())
	assert.Equal(t, 12, p.MoveNumber())
}

func TestParsePositionErrors(t *testing.T) {
	bad := []string{
		"",
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 x-x w",
		"9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 x-x w 0",
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-1 x-x w 0",
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 x-x g 0",
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 0-x w 0",
		"9,9,9,9,9,9,9,9,9/9,9,9,9,9,9,9,9,9 0-0 x-x w -3",
		"9,9,9,9,9,9,9,9,a/9,9,9,9,9,9,9,9,9 0-0 x-x w 0",
	}
	for _, b := range bad {
		_, err := ParsePosition(b)
		assert.Error(t, err, b)
	}
}

func TestMoveNotation(t *testing.T) {
	pit, err := ParseMove(toguz.Black, "3x")
	require.NoError(t, err)
	assert.Equal(t, 11, pit)
	assert.Equal(t, "3", FormatMove(toguz.Black, 11))

	pit, err = ParseMove(toguz.White, "9")
	require.NoError(t, err)
	assert.Equal(t, 8, pit)

	for _, b := range []string{"0", "10", "", "a"} {
		_, err := ParseMove(toguz.White, b)
		assert.Error(t, err, b)
	}

	assert.Equal(t, "4x", FormatRecorded(toguz.MoveRecord{Side: toguz.Black, Pit: 12, Captured: 6}))
	assert.Equal(t, "6*", FormatRecorded(toguz.MoveRecord{Side: toguz.White, Pit: 5, TuzCreated: true}))
}
