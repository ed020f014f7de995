package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/toguz"
	"github.com/kazanlab/toguz/toguztest"
)

func TestRenderBoard(t *testing.T) {
	p := toguztest.Position("9,9,0,9,9,9,9,9,9/9,9,9,9,0,9,9,9,9 10-8 5-3 b 12")
	var out bytes.Buffer
	RenderBoard(nil, &out, p)
	s := out.String()
	assert.Contains(t, s, "[black to play]")
	assert.Contains(t, s, "[Xw]")
	assert.Contains(t, s, "[Xb]")
	assert.Contains(t, s, "kazan 10")
	assert.Contains(t, s, "kazan 8")

	lines := strings.Split(strings.TrimSpace(s), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[2], "black"))
	assert.True(t, strings.HasPrefix(lines[3], "white"))
}

// scripted replays fixed moves, then resigns.
type scripted struct{ moves []Move }

func (s *scripted) GetMove(p *toguz.Position) Move {
	if len(s.moves) == 0 {
		return Move{Action: Resign}
	}
	m := s.moves[0]
	s.moves = s.moves[1:]
	return m
}

func TestPlayAndUndo(t *testing.T) {
	white := &scripted{moves: []Move{{Pit: 0}, {Action: Undo}, {Pit: 4}}}
	black := &scripted{moves: []Move{{Pit: 9}, {Pit: 3}, {Pit: 10}}}
	var out bytes.Buffer
	c := &CLI{Out: &out, White: white, Black: black}
	final := c.Play()

	// White 1, Black 1, White undoes both, White 5, Black's illegal 3
	// is refused, Black 2, then White resigns.
	assert.Equal(t, []int{4, 10}, c.Moves())
	assert.Equal(t, toguz.White, final.ToMove())
	assert.Contains(t, out.String(), "illegal move:")
	assert.Contains(t, out.String(), "white resigns.")
}

func TestUndoAtStart(t *testing.T) {
	var out bytes.Buffer
	c := &CLI{Out: &out,
		White: &scripted{moves: []Move{{Action: Undo}}},
		Black: &scripted{},
	}
	c.Play()
	assert.Contains(t, out.String(), "nothing to undo")
}

func TestCLIPlayer(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("\nten\n3\nundo\n"))
	var out bytes.Buffer
	p := NewCLIPlayer(&out, in)
	pos := toguztest.Play("1")

	assert.Equal(t, Move{Pit: 11}, p.GetMove(pos))
	assert.Contains(t, out.String(), "parse error")
	assert.Equal(t, Move{Action: Undo}, p.GetMove(pos))
	assert.Equal(t, Move{Action: Resign}, p.GetMove(pos))
}

func TestAIGame(t *testing.T) {
	var out bytes.Buffer
	c := &CLI{
		Out:       &out,
		White:     AIPlayer(ai.NewPlayer(ai.PlayerConfig{Tier: ai.Medium}), 0),
		Black:     AIPlayer(ai.NewPlayer(ai.PlayerConfig{Tier: ai.Easy, Seed: 5}), 0),
		ShowSteps: true,
	}
	final := c.Play()
	over, _ := final.GameOver()
	assert.True(t, over)
	assert.Contains(t, out.String(), "Game Over!")
	assert.Contains(t, out.String(), "pickup")
}
