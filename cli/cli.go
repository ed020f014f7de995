// Package cli plays games on a terminal.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

// Action is what a player decided to do on its turn.
type Action int

const (
	Sow Action = iota
	Undo
	Resign
)

type Move struct {
	Action Action
	Pit    int
}

type Player interface {
	GetMove(p *toguz.Position) Move
}

type Glyphs struct {
	// Tuz marks a claimed pit, followed by the claiming side's initial.
	Tuz   string
	Empty string
	Store string
}

type CLI struct {
	// history holds every position of the game so far; the last entry is
	// the current position.
	history []*toguz.Position

	Start     *toguz.Position
	Glyphs    *Glyphs
	Out       io.Writer
	White     Player
	Black     Player
	ShowSteps bool
}

var DefaultGlyphs = Glyphs{
	Tuz:   "X",
	Empty: ".",
	Store: "kazan",
}

var UnicodeGlyphs = Glyphs{
	Tuz:   "◎",
	Empty: "·",
	Store: "⌂",
}

func (c *CLI) Play() *toguz.Position {
	start := c.Start
	if start == nil {
		start = toguz.New()
	}
	c.history = []*toguz.Position{start}
	for {
		p := c.Position()
		c.render()
		if over, _ := p.GameOver(); over {
			d := p.WinDetails()
			fmt.Fprintf(c.Out, "Game Over! ")
			if d.Winner == toguz.NoSide {
				fmt.Fprintf(c.Out, "Draw.")
			} else {
				fmt.Fprintf(c.Out, "%s wins.", d.Winner)
			}
			fmt.Fprintf(c.Out, "\nkazans: white=%d black=%d\n", d.WhiteStore, d.BlackStore)
			return p
		}
		side := p.ToMove()
		var m Move
		if side == toguz.White {
			m = c.White.GetMove(p)
		} else {
			m = c.Black.GetMove(p)
		}
		switch m.Action {
		case Resign:
			fmt.Fprintf(c.Out, "%s resigns.\n", side)
			return p
		case Undo:
			if !c.undo(side) {
				fmt.Fprintln(c.Out, "nothing to undo")
			}
			continue
		}
		next, steps, e := p.Trace(side, m.Pit)
		if e != nil {
			fmt.Fprintln(c.Out, "illegal move:", e)
			continue
		}
		log := next.Log()
		mv := tkn.FormatRecorded(log[len(log)-1])
		if side == toguz.White {
			fmt.Fprintf(c.Out, "%d. %s\n", p.MoveNumber()/2+1, mv)
		} else {
			fmt.Fprintf(c.Out, "%d. ... %s\n", p.MoveNumber()/2+1, mv)
		}
		if c.ShowSteps {
			for _, s := range steps {
				fmt.Fprintf(c.Out, "  %s\n", s)
			}
		}
		c.history = append(c.history, next)
	}
}

// undo rewinds to the last position in which side was to move, before
// the current one.
func (c *CLI) undo(side toguz.Side) bool {
	for i := len(c.history) - 2; i >= 0; i-- {
		if c.history[i].ToMove() == side {
			c.history = c.history[:i+1]
			return true
		}
	}
	return false
}

func (c *CLI) Position() *toguz.Position {
	return c.history[len(c.history)-1]
}

// Moves returns the pits played to reach the current position.
func (c *CLI) Moves() []int {
	var out []int
	for _, r := range c.Position().Log()[len(c.history[0].Log()):] {
		out = append(out, r.Pit)
	}
	return out
}

func (c *CLI) render() {
	RenderBoard(c.Glyphs, c.Out, c.Position())
}

func cell(g *Glyphs, p *toguz.Position, pit int) string {
	if owner := p.TuzOwner(pit); owner != toguz.NoSide {
		return g.Tuz + owner.String()[:1]
	}
	if p.Pit(pit) == 0 {
		return g.Empty
	}
	return strconv.Itoa(p.Pit(pit))
}

// RenderBoard draws Black's row on top, running right to left, and
// White's row underneath, so that sowing goes anticlockwise.
func RenderBoard(g *Glyphs, out io.Writer, p *toguz.Position) {
	if g == nil {
		g = &DefaultGlyphs
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "[%s to play]\n", p.ToMove())
	w := tabwriter.NewWriter(out, 4, 8, 1, '\t', 0)

	fmt.Fprintf(w, "\t")
	for i := toguz.RowPits; i > 0; i-- {
		fmt.Fprintf(w, "%d.\t", i)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "black\t")
	for i := toguz.LastPit(toguz.Black); i >= toguz.RowStart(toguz.Black); i-- {
		fmt.Fprintf(w, "[%s]\t", cell(g, p, i))
	}
	fmt.Fprintf(w, "%s %d\n", g.Store, p.Store(toguz.Black))
	fmt.Fprintf(w, "white\t")
	for i := toguz.RowStart(toguz.White); i <= toguz.LastPit(toguz.White); i++ {
		fmt.Fprintf(w, "[%s]\t", cell(g, p, i))
	}
	fmt.Fprintf(w, "%s %d\n", g.Store, p.Store(toguz.White))
	fmt.Fprintf(w, "\t")
	for i := 1; i <= toguz.RowPits; i++ {
		fmt.Fprintf(w, "%d.\t", i)
	}
	fmt.Fprintf(w, "\n")
	w.Flush()
}
