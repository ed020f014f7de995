package relay

import (
	"errors"
	"fmt"

	"github.com/kazanlab/toguz/toguz"
)

// Tolerance is how far below the full stone count a submitted board may
// fall and still pass the gateway.
const Tolerance = 2

var ErrRejected = errors.New("board rejected")

// Rejection is the reason a submitted board failed the gateway.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return "board rejected: " + r.Reason
}

func (r *Rejection) Is(target error) bool {
	return target == ErrRejected
}

func reject(format string, args ...interface{}) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Validate is a cheap structural check of a board claimed by side as the
// result of its move from prev. It does not replay the move.
func Validate(prev *toguz.Position, next *toguz.Snapshot, side toguz.Side) error {
	if over, _ := prev.GameOver(); over {
		return reject("game is over")
	}
	if prev.ToMove() != side {
		return reject("not %s's turn", side)
	}
	if next == nil {
		return reject("no board")
	}
	if len(next.Pits) != toguz.Pits {
		return reject("%d pits", len(next.Pits))
	}
	if next.Kazans == nil || next.Kazans.White == nil || next.Kazans.Black == nil {
		return reject("missing kazan")
	}
	total := *next.Kazans.White + *next.Kazans.Black
	if *next.Kazans.White < 0 || *next.Kazans.Black < 0 {
		return reject("negative kazan")
	}
	for i, n := range next.Pits {
		if n < 0 {
			return reject("negative count in pit %d", i)
		}
		total += n
	}
	if total < toguz.TotalStones-Tolerance || total > toguz.TotalStones {
		return reject("stone total %d", total)
	}
	return nil
}
