package infer

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/toguz"
)

// Update is what a display should do with an incoming position: animate
// Replay when it is set, otherwise replace the board with Position.
type Update struct {
	Position *toguz.Position
	Replay   *Replay
	// Err is set when an opponent move could not be reconstructed.
	Err error
}

// Tracker follows the positions shown to one player and turns each
// opponent move into a Replay.
type Tracker struct {
	local toguz.Side
	shown *toguz.Position
	log   zerolog.Logger
}

func NewTracker(local toguz.Side, start *toguz.Position) *Tracker {
	return &Tracker{
		local: local,
		shown: start,
		log:   log.With().Str("component", "tracker").Stringer("side", local).Logger(),
	}
}

func (t *Tracker) Shown() *toguz.Position {
	return t.shown
}

func (t *Tracker) Side() toguz.Side {
	return t.local
}

// Reset replaces the shown position and the local side, as for a new
// game.
func (t *Tracker) Reset(local toguz.Side, p *toguz.Position) {
	t.local = local
	t.shown = p
}

func (t *Tracker) Observe(next *toguz.Position) Update {
	prev := t.shown
	t.shown = next
	if prev == nil || prev.SameBoard(next) && prev.ToMove() == next.ToMove() {
		return Update{Position: next}
	}
	if prev.ToMove() == t.local {
		t.log.Debug().Int("ply", next.MoveNumber()).Msg("replacing board")
		return Update{Position: next}
	}
	r, err := Infer(prev, next)
	if err != nil {
		t.log.Warn().Err(err).Int("ply", next.MoveNumber()).Msg("hard board replacement")
		return Update{Position: next, Err: err}
	}
	return Update{Position: next, Replay: r}
}
