package tkn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kazanlab/toguz/toguz"
)

// ParseMove converts a 1-based pit number in side's row into a pit index.
// Record modifiers (x for a capture, * for a tuz) are ignored.
func ParseMove(side toguz.Side, s string) (int, error) {
	trimmed := strings.TrimRight(s, "x*?!")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 || n > toguz.RowPits {
		return 0, fmt.Errorf("bad move: %q", s)
	}
	return toguz.RowStart(side) + n - 1, nil
}

func FormatMove(side toguz.Side, pit int) string {
	return strconv.Itoa(pit - toguz.RowStart(side) + 1)
}

// FormatRecorded formats a logged move including its modifiers.
func FormatRecorded(r toguz.MoveRecord) string {
	s := FormatMove(r.Side, r.Pit)
	if r.Captured > 0 {
		s += "x"
	}
	if r.TuzCreated {
		s += "*"
	}
	return s
}
