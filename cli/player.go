package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

func NewCLIPlayer(out io.Writer, in *bufio.Reader) Player {
	return &cliPlayer{out, in}
}

type cliPlayer struct {
	out io.Writer
	in  *bufio.Reader
}

// GetMove reads a pit number 1-9 in the mover's row, "undo", or
// "resign". End of input resigns.
func (c *cliPlayer) GetMove(p *toguz.Position) Move {
	for {
		fmt.Fprintf(c.out, "%s> ", p.ToMove())
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return Move{Action: Resign}
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "undo", "u":
			return Move{Action: Undo}
		case "resign", "quit", "q":
			return Move{Action: Resign}
		}
		pit, err := tkn.ParseMove(p.ToMove(), line)
		if err != nil {
			fmt.Fprintln(c.out, "parse error: ", err)
			continue
		}
		return Move{Pit: pit}
	}
}

// AIPlayer adapts an engine. A zero limit searches without a deadline;
// an engine that finds no move resigns.
func AIPlayer(p ai.Player, limit time.Duration) Player {
	return &aiPlayer{p, limit}
}

type aiPlayer struct {
	ai    ai.Player
	limit time.Duration
}

func (a *aiPlayer) GetMove(p *toguz.Position) Move {
	ctx := context.Background()
	if a.limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.limit)
		defer cancel()
	}
	pit, ok := a.ai.GetMove(ctx, p)
	if !ok {
		return Move{Action: Resign}
	}
	return Move{Pit: pit}
}
