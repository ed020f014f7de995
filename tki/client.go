package tki

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

// Client drives an engine subprocess that speaks the protocol.
type Client struct {
	cmd *exec.Cmd

	stdinPipe  io.WriteCloser
	stdoutPipe io.ReadCloser

	read  *bufio.Reader
	write io.Writer

	gameid int
}

func NewClient(cmdline []string) (*Client, error) {
	path, err := exec.LookPath(cmdline[0])
	if err != nil {
		return nil, err
	}
	cmd := &exec.Cmd{Path: path, Args: cmdline}
	cl := &Client{cmd: cmd}

	if cl.stdinPipe, err = cmd.StdinPipe(); err != nil {
		return nil, err
	}
	cl.write = cl.stdinPipe
	if cl.stdoutPipe, err = cmd.StdoutPipe(); err != nil {
		return nil, err
	}
	cl.read = bufio.NewReader(cl.stdoutPipe)

	if err := cl.cmd.Start(); err != nil {
		return nil, err
	}
	if _, err := cl.sendCommand("tki", "tkiok"); err != nil {
		cl.Close()
		return nil, err
	}
	return cl, nil
}

// newClient wires a client to an already-running engine.
func newClient(r io.Reader, w io.Writer) *Client {
	return &Client{read: bufio.NewReader(r), write: w}
}

// NewGame resets the engine and returns a Player backed by it. Players
// from earlier games stop working.
func (c *Client) NewGame(tier ai.Tier) (ai.Player, error) {
	c.gameid++
	if _, err := c.sendCommand("newgame", ""); err != nil {
		return nil, err
	}
	return &player{client: c, gameid: c.gameid, tier: tier}, nil
}

func (c *Client) Close() {
	if c.write != nil {
		c.sendCommand("quit", "")
	}
	if c.stdinPipe != nil {
		c.stdinPipe.Close()
	}
	if c.stdoutPipe != nil {
		c.stdoutPipe.Close()
	}
	if c.cmd != nil {
		c.cmd.Wait()
	}
}

func (c *Client) sendCommand(cmd string, expect string) ([]string, error) {
	if _, err := fmt.Fprintln(c.write, cmd); err != nil {
		return nil, err
	}
	if expect == "" {
		return nil, nil
	}
	for {
		line, err := c.read.ReadString('\n')
		if err != nil {
			return nil, err
		}
		words := strings.Fields(line)
		if len(words) > 0 && words[0] == expect {
			return words, nil
		}
	}
}

type player struct {
	client *Client
	gameid int
	tier   ai.Tier
}

func (p *player) GetMove(ctx context.Context, pos *toguz.Position) (int, bool) {
	if p.gameid != p.client.gameid {
		panic("bad gameid: calling GetMove on a dead player")
	}
	if _, err := p.client.sendCommand("position tkn "+tkn.FormatPosition(pos), ""); err != nil {
		log.Error().Err(err).Msg("send position")
		return 0, false
	}
	goCmd := fmt.Sprintf("go tier %d", int(p.tier))
	if deadline, ok := ctx.Deadline(); ok {
		goCmd = fmt.Sprintf("%s movetime %d", goCmd, time.Until(deadline)/time.Millisecond)
	}
	bestmove, err := p.client.sendCommand(goCmd, "bestmove")
	if err != nil {
		log.Error().Err(err).Msg("read bestmove")
		return 0, false
	}
	if len(bestmove) != 2 || bestmove[1] == "none" {
		return 0, false
	}
	pit, err := tkn.ParseMove(pos.ToMove(), bestmove[1])
	if err != nil {
		log.Error().Err(err).Str("move", bestmove[1]).Msg("unable to parse move")
		return 0, false
	}
	return pit, true
}
