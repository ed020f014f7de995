package netplay

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/infer"
	"github.com/kazanlab/toguz/relay"
	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

var (
	ErrOpponentLeft = errors.New("opponent left")
	ErrNoMove       = errors.New("player has no move")
)

// Game is one seat in a relay room.
type Game struct {
	Code     string
	Side     toguz.Side
	Opponent string
	// Snapshots sends the whole board after each move instead of asking
	// the relay to play the pit.
	Snapshots bool
	// Observe, if set, sees every position update from the relay.
	Observe func(infer.Update)

	// Positions holds every position seen this game.
	Positions []*toguz.Position
	// Replays holds the reconstructed opponent moves, in order.
	Replays []*infer.Replay

	p       *toguz.Position
	tracker *infer.Tracker
	log     zerolog.Logger
}

func (g *Game) Position() *toguz.Position {
	return g.p
}

type pick struct {
	pit int
	ok  bool
}

// PlayGame plays g from start until the game ends, the opponent leaves,
// or ctx is done. Positions come only from the relay; this client's
// own moves take effect when the relay echoes them back.
func PlayGame(ctx context.Context, c *Commands, g *Game, start *toguz.Position, player ai.Player) (*toguz.Position, error) {
	g.p = start
	g.Positions = []*toguz.Position{start}
	g.tracker = infer.NewTracker(g.Side, start)
	g.log = log.With().Str("room", g.Code).Stringer("side", g.Side).Logger()
	g.log.Info().Str("opponent", g.Opponent).Bool("snapshots", g.Snapshots).Msg("new game")

	for {
		if over, winner := g.p.GameOver(); over {
			g.log.Info().
				Int("ply", g.p.MoveNumber()).
				Stringer("winner", winner).
				Int("white", g.p.Store(toguz.White)).
				Int("black", g.p.Store(toguz.Black)).
				Msg("game over")
			return g.p, nil
		}
		if err := handleTurn(ctx, c, g, player); err != nil {
			return g.p, err
		}
	}
}

// handleTurn runs until the position changes.
func handleTurn(ctx context.Context, c *Commands, g *Game, player ai.Player) error {
	moveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var moves chan pick
	if g.p.ToMove() == g.Side {
		moves = make(chan pick, 1)
		go func(p *toguz.Position) {
			pit, ok := player.GetMove(moveCtx, p)
			moves <- pick{pit, ok}
		}(g.p)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-moves:
			moves = nil
			if !m.ok {
				return ErrNoMove
			}
			if g.Snapshots {
				next, err := g.p.Move(g.Side, m.pit)
				if err != nil {
					g.log.Error().Err(err).Int("pit", m.pit).Msg("player returned bad move")
					return err
				}
				c.SubmitBoard(g.Code, next, g.Side)
			} else {
				c.Play(g.Code, m.pit)
			}
			g.log.Info().
				Int("ply", g.p.MoveNumber()).
				Str("move", tkn.FormatMove(g.Side, m.pit)).
				Msg("my-move")
		case env, ok := <-c.Recv():
			if !ok {
				if err := c.Error(); err != nil {
					return err
				}
				return ErrClosed
			}
			done, err := g.handle(env)
			if err != nil || done {
				return err
			}
		}
	}
}

// handle applies one relay message and reports whether it ended the
// turn.
func (g *Game) handle(env relay.Envelope) (bool, error) {
	switch env.Type {
	case relay.MsgMove:
		var m relay.Moved
		if err := json.Unmarshal(env.Payload, &m); err != nil || m.Board == nil {
			g.log.Warn().Err(err).Msg("bad move message")
			return false, nil
		}
		u := g.tracker.Observe(m.Board)
		if g.Observe != nil {
			g.Observe(u)
		}
		if u.Replay != nil {
			g.Replays = append(g.Replays, u.Replay)
			g.log.Info().
				Int("ply", g.p.MoveNumber()).
				Str("move", tkn.FormatMove(u.Replay.Side, u.Replay.Pit)).
				Int("steps", len(u.Replay.Steps)).
				Msg("their-move")
		}
		g.p = m.Board
		g.Positions = append(g.Positions, g.p)
		return true, nil
	case relay.MsgNewGame:
		var ng relay.NewGameStarted
		if err := json.Unmarshal(env.Payload, &ng); err != nil || ng.Board == nil {
			return false, nil
		}
		g.log.Info().Msg("game restarted")
		g.p = ng.Board
		g.Positions = []*toguz.Position{g.p}
		g.Replays = nil
		g.tracker.Reset(g.Side, g.p)
		return true, nil
	case relay.MsgPlayerLeft:
		return true, ErrOpponentLeft
	case relay.MsgGameError:
		// Our move was refused; search again.
		return true, nil
	}
	return false, nil
}
