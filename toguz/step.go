package toguz

import "fmt"

type StepKind byte

const (
	// Pickup lifts every stone out of the source pit.
	Pickup StepKind = 1 + iota
	// Sow drops a single stone into a pit.
	Sow
	// TuzCredit sends a sown stone that reached a tuz straight to the
	// tuz owner's store.
	TuzCredit
	Capture
	TuzClaim
	// Sweep moves a pit's stones to its owner's store when the game ends.
	Sweep
)

var stepNames = [...]string{
	Pickup:    "pickup",
	Sow:       "sow",
	TuzCredit: "tuz-credit",
	Capture:   "capture",
	TuzClaim:  "tuz-claim",
	Sweep:     "sweep",
}

func (k StepKind) String() string {
	if int(k) < len(stepNames) && stepNames[k] != "" {
		return stepNames[k]
	}
	return fmt.Sprintf("StepKind(%d)", k)
}

// Step is one visible effect of a move. Side is the mover for Pickup and
// Sow, and the side whose store is credited for every other kind.
type Step struct {
	Kind   StepKind `json:"kind"`
	Pit    int      `json:"pit"`
	Side   Side     `json:"side"`
	Stones int      `json:"stones"`
}

func (s Step) String() string {
	return fmt.Sprintf("%s pit=%d side=%s stones=%d", s.Kind, s.Pit, s.Side, s.Stones)
}

// Board is a mutable view of a position's pits, stores and tuz, used to
// render a move one step at a time.
type Board struct {
	Pits   [Pits]int
	Stores [2]int
	Tuz    [2]int
}

func (p *Position) Board() Board {
	return Board{Pits: p.pits, Stores: p.stores, Tuz: p.tuz}
}

// Apply advances b by one step.
func (b *Board) Apply(s Step) {
	switch s.Kind {
	case Pickup:
		b.Pits[s.Pit] -= s.Stones
	case Sow:
		b.Pits[s.Pit] += s.Stones
	case TuzCredit:
		b.Stores[s.Side] += s.Stones
	case Capture, Sweep:
		b.Pits[s.Pit] -= s.Stones
		b.Stores[s.Side] += s.Stones
	case TuzClaim:
		b.Tuz[s.Side] = s.Pit
		b.Pits[s.Pit] -= s.Stones
		b.Stores[s.Side] += s.Stones
	default:
		panic(fmt.Sprintf("bad step kind: %d", s.Kind))
	}
}
