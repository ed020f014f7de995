package tki

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

func run(t *testing.T, script string) []string {
	t.Helper()
	var out bytes.Buffer
	e := NewEngine(strings.NewReader(script), &out)
	require.NoError(t, e.Run(context.Background()))
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestHandshake(t *testing.T) {
	lines := run(t, "tki\nisready\nquit\n")
	assert.Equal(t, []string{"id name toguz", "id author kazanlab", "tkiok", "readyok"}, lines)
}

func TestGo(t *testing.T) {
	lines := run(t, "newgame\nposition startpos moves 1 5\ngo tier 3\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "info tier 3 depth 4 "), lines[0])

	fields := strings.Fields(lines[1])
	require.Len(t, fields, 2)
	assert.Equal(t, "bestmove", fields[0])
	pos := toguz.New()
	pos, _ = pos.Move(toguz.White, 0)
	pos, _ = pos.Move(toguz.Black, 13)
	pit, err := tkn.ParseMove(toguz.White, fields[1])
	require.NoError(t, err)
	want, ok := ai.ChooseMove(pos, toguz.White, ai.Hard)
	require.True(t, ok)
	assert.Equal(t, want, pit)
}

func TestGoTkn(t *testing.T) {
	lines := run(t, "position tkn 0,0,0,0,0,0,0,0,0/0,0,0,0,0,0,0,0,0 90-72 x-x w 40\ngo\n")
	assert.Equal(t, []string{"bestmove none"}, lines)

	lines = run(t, "position tkn 1,0,0,0,0,0,0,0,1/1,0,0,0,0,0,0,0,0 80-79 x-x w 50\ngo tier 2\n")
	assert.Equal(t, "bestmove 9", lines[len(lines)-1])
}

func TestErrors(t *testing.T) {
	var out bytes.Buffer
	e := NewEngine(strings.NewReader("position startpos moves 0\n"), &out)
	assert.Error(t, e.Run(context.Background()))

	e = NewEngine(strings.NewReader("frobnicate\n"), &out)
	assert.Error(t, e.Run(context.Background()))

	lines := run(t, "go\n")
	assert.Equal(t, []string{"bestmove none"}, lines)
	lines = run(t, "position startpos\ngo tier 7\n")
	assert.Equal(t, []string{"bestmove none"}, lines)
}

func TestClientPlayer(t *testing.T) {
	toEngine, fromClient := io.Pipe()
	fromEngine, toClient := io.Pipe()
	e := NewEngine(toEngine, toClient)
	done := make(chan error, 1)
	go func() {
		done <- e.Run(context.Background())
		toClient.Close()
	}()

	c := newClient(fromEngine, fromClient)
	_, err := c.sendCommand("tki", "tkiok")
	require.NoError(t, err)

	p, err := c.NewGame(ai.Medium)
	require.NoError(t, err)
	pos := toguz.New()
	pit, ok := p.GetMove(context.Background(), pos)
	require.True(t, ok)
	want, _ := ai.ChooseMove(pos, toguz.White, ai.Medium)
	assert.Equal(t, want, pit)

	c.sendCommand("quit", "")
	fromClient.Close()
	assert.NoError(t, <-done)
}
