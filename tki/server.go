// Package tki implements a line-oriented engine protocol: a controller
// sends positions over stdin and reads back the engine's chosen moves.
package tki

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

type Engine struct {
	// Tier is used by `go` commands that name none.
	Tier ai.Tier
	Seed uint64

	in  *bufio.Reader
	out io.Writer

	pos *toguz.Position
}

func NewEngine(in io.Reader, out io.Writer) *Engine {
	return &Engine{
		Tier: ai.Hard,
		in:   bufio.NewReader(in),
		out:  out,
	}
}

func (e *Engine) Run(ctx context.Context) error {
	for {
		line, err := e.in.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		switch words[0] {
		case "tki":
			fmt.Fprintln(e.out, "id name toguz")
			fmt.Fprintln(e.out, "id author kazanlab")
			fmt.Fprintln(e.out, "tkiok")
		case "quit":
			return nil
		case "newgame":
			e.pos = nil
		case "position":
			e.pos, err = parsePosition(words)
			if err != nil {
				return fmt.Errorf("error parsing position: %w", err)
			}
		case "go":
			if err := e.analyze(ctx, words); err != nil {
				log.Warn().Err(err).Msg("go")
				fmt.Fprintln(e.out, "bestmove none")
			}
		case "isready":
			fmt.Fprintln(e.out, "readyok")
		case "stop":
		default:
			return fmt.Errorf("unknown command: %q", line)
		}
	}
}

func parsePosition(words []string) (*toguz.Position, error) {
	var pos *toguz.Position
	words = words[1:]
	if len(words) == 0 {
		return nil, errors.New("not enough arguments")
	}
	switch words[0] {
	case "startpos":
		words = words[1:]
		pos = toguz.New()
	case "tkn":
		if len(words) < 6 {
			return nil, errors.New("position tkn: not enough arguments")
		}
		var err error
		pos, err = tkn.ParsePosition(strings.Join(words[1:6], " "))
		if err != nil {
			return nil, fmt.Errorf("parse position: %w", err)
		}
		words = words[6:]
	default:
		return nil, fmt.Errorf("unknown initial position: %q", words[0])
	}
	if len(words) == 0 {
		return pos, nil
	}
	if words[0] != "moves" {
		return nil, errors.New("position: expected `moves'")
	}
	for _, w := range words[1:] {
		pit, err := tkn.ParseMove(pos.ToMove(), w)
		if err != nil {
			return nil, err
		}
		pos, err = pos.Move(pos.ToMove(), pit)
		if err != nil {
			return nil, fmt.Errorf("move %q: %w", w, err)
		}
	}
	return pos, nil
}

func parseGo(words []string, tier ai.Tier) (ai.Tier, time.Duration, error) {
	var movetime time.Duration
	words = words[1:]
	for len(words) > 0 {
		if len(words) < 2 {
			return 0, 0, fmt.Errorf("go: %s needs a value", words[0])
		}
		switch words[0] {
		case "tier":
			t, err := ai.ParseTier(words[1])
			if err != nil {
				return 0, 0, err
			}
			tier = t
		case "movetime":
			ms, err := strconv.ParseUint(words[1], 10, 64)
			if err != nil {
				return 0, 0, fmt.Errorf("bad ms: %v", words[1])
			}
			movetime = time.Duration(ms) * time.Millisecond
		default:
			return 0, 0, fmt.Errorf("go: unknown option %q", words[0])
		}
		words = words[2:]
	}
	return tier, movetime, nil
}

type analysis struct {
	pv    []int
	val   float64
	stats ai.Stats
	ok    bool
}

func (e *Engine) analyze(ctx context.Context, words []string) error {
	if e.pos == nil {
		return errors.New("no position provided")
	}
	tier, movetime, err := parseGo(words, e.Tier)
	if err != nil {
		return err
	}
	if movetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, movetime)
		defer cancel()
	}

	pos := e.pos
	side := pos.ToMove()
	start := time.Now()
	done := make(chan analysis, 1)
	go func() {
		if tier == ai.Easy {
			m, ok := ai.NewRandom(e.Seed).GetMove(ctx, pos)
			done <- analysis{pv: []int{m}, ok: ok}
			return
		}
		pv, val, st := ai.NewMinimax(ai.ConfigForTier(tier)).Analyze(pos)
		done <- analysis{pv: pv, val: val, stats: st, ok: len(pv) > 0}
	}()

	var a analysis
	select {
	case a = <-done:
	case <-ctx.Done():
		return fmt.Errorf("search abandoned: %w", ctx.Err())
	}
	if !a.ok {
		fmt.Fprintln(e.out, "bestmove none")
		return nil
	}

	var pvs strings.Builder
	s := side
	for _, m := range a.pv {
		pvs.WriteString(" ")
		pvs.WriteString(tkn.FormatMove(s, m))
		s = s.Flip()
	}
	fmt.Fprintf(e.out, "info tier %d depth %d time %d nodes %d score %.1f pv%s\n",
		int(tier),
		a.stats.Depth,
		time.Since(start)/time.Millisecond,
		a.stats.Visited+a.stats.Evaluated,
		a.val,
		pvs.String(),
	)
	fmt.Fprintf(e.out, "bestmove %s\n", tkn.FormatMove(side, a.pv[0]))
	return nil
}
