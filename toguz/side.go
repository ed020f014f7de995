package toguz

import (
	"encoding/json"
	"fmt"
)

type Side byte

const (
	White  Side = 0
	Black  Side = 1
	NoSide Side = 2
)

func (s Side) String() string {
	switch s {
	case White:
		return "white"
	case Black:
		return "black"
	case NoSide:
		return "no side"
	default:
		panic(fmt.Sprintf("bad side: %x", int(s)))
	}
}

func (s Side) Flip() Side {
	switch s {
	case White:
		return Black
	case Black:
		return White
	case NoSide:
		return NoSide
	default:
		panic(fmt.Sprintf("bad side: %x", int(s)))
	}
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "white", "w", "A", "a":
		return White, nil
	case "black", "b", "B":
		return Black, nil
	}
	return NoSide, fmt.Errorf("bad side: %q", s)
}

func (s Side) MarshalJSON() ([]byte, error) {
	if s != White && s != Black {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(bs []byte) error {
	if string(bs) == "null" {
		*s = NoSide
		return nil
	}
	var str string
	if err := json.Unmarshal(bs, &str); err != nil {
		return err
	}
	v, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
