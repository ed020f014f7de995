package tkn

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/kazanlab/toguz/toguz"
)

type Tag struct {
	Name  string
	Value string
}

type Op interface {
	op()

	Source() string
}

type opCommon struct {
	src string
}

func (o opCommon) Source() string {
	return o.src
}

func (o opCommon) op() {}

type MoveNumber struct {
	opCommon
	Number int
}

// Move is a single ply. Number is the 1-based pit within the mover's
// row; the mover is only known once the record is replayed.
type Move struct {
	opCommon
	Number    int
	Modifiers string
}

type Comment struct {
	opCommon
	Comment string
}

type Result struct {
	opCommon
	Winner toguz.Side
}

type Record struct {
	Tags []Tag
	Ops  []Op
}

var ErrNoSuchMove = errors.New("record has no such move")

func ParseRecord(r io.Reader) (*Record, error) {
	buf := bufio.NewReader(r)
	var rec Record
	if err := readTags(buf, &rec); err != nil && err != io.EOF {
		return nil, err
	}
	if err := readMoves(buf, &rec); err != nil && err != io.EOF {
		return nil, err
	}
	return &rec, nil
}

func ParseFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRecord(f)
}

func (r *Record) FindTag(name string) string {
	for _, t := range r.Tags {
		if t.Name == name {
			return t.Value
		}
	}
	return ""
}

// SetTag replaces the value of an existing tag or appends a new one.
func (r *Record) SetTag(name, value string) {
	for i := range r.Tags {
		if r.Tags[i].Name == name {
			r.Tags[i].Value = value
			return
		}
	}
	r.Tags = append(r.Tags, Tag{Name: name, Value: value})
}

func (r *Record) InitialPosition() (*toguz.Position, error) {
	tag := r.FindTag("Position")
	if tag == "" {
		return toguz.New(), nil
	}
	p, err := ParsePosition(tag)
	if err != nil {
		return nil, fmt.Errorf("bad Position tag: %w", err)
	}
	return p, nil
}

// Moves returns the plies of the record in order.
func (r *Record) Moves() []*Move {
	var out []*Move
	for _, op := range r.Ops {
		if m, ok := op.(*Move); ok {
			out = append(out, m)
		}
	}
	return out
}

// Replay plays the record from its initial position. The result holds
// the initial position followed by the position after each ply.
func (r *Record) Replay() ([]*toguz.Position, error) {
	p, err := r.InitialPosition()
	if err != nil {
		return nil, err
	}
	out := []*toguz.Position{p}
	for i, m := range r.Moves() {
		side := p.ToMove()
		pit := toguz.RowStart(side) + m.Number - 1
		next, err := p.Move(side, pit)
		if err != nil {
			return out, fmt.Errorf("ply %d (%s): %w", i+1, m.Source(), err)
		}
		p = next
		out = append(out, p)
	}
	return out, nil
}

// PositionAtMove returns the position after the first ply plies.
func (r *Record) PositionAtMove(ply int) (*toguz.Position, error) {
	ps, err := r.Replay()
	if ply >= 0 && ply < len(ps) {
		return ps[ply], nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %d", ErrNoSuchMove, ply)
}

// NewRecord plays pits from initial and records the game, including
// capture and tuz modifiers and the result if the game ended.
func NewRecord(initial *toguz.Position, pits []int) (*Record, error) {
	rec := &Record{}
	if !initial.SameBoard(toguz.New()) || initial.ToMove() != toguz.White {
		rec.SetTag("Position", FormatPosition(initial))
	}
	p := initial
	number := 0
	for _, pit := range pits {
		side := p.ToMove()
		next, err := p.Move(side, pit)
		if err != nil {
			return nil, err
		}
		if side == toguz.White || number == 0 {
			number++
			rec.Ops = append(rec.Ops, &MoveNumber{Number: number})
		}
		log := next.Log()
		m := &Move{Number: pit - toguz.RowStart(side) + 1}
		m.src = FormatRecorded(log[len(log)-1])
		m.Modifiers = m.src[len(strconv.Itoa(m.Number)):]
		rec.Ops = append(rec.Ops, m)
		p = next
	}
	if over, winner := p.GameOver(); over {
		rec.Ops = append(rec.Ops, &Result{Winner: winner})
		rec.SetTag("Result", FormatResult(winner))
	}
	return rec, nil
}

func FormatResult(winner toguz.Side) string {
	switch winner {
	case toguz.White:
		return "1-0"
	case toguz.Black:
		return "0-1"
	}
	return "1/2-1/2"
}

func readTags(r *bufio.Reader, rec *Record) error {
	for {
		if e := skipWS(r); e != nil {
			return e
		}
		c, e := r.ReadByte()
		if e != nil {
			return e
		}
		if c != '[' {
			return r.UnreadByte()
		}
		line, e := r.ReadString(']')
		if e != nil {
			return e
		}
		line = line[:len(line)-1]
		bits := strings.SplitN(line, " ", 2)
		if len(bits) != 2 {
			return errors.New("bad tag")
		}
		rec.Tags = append(rec.Tags, Tag{
			Name:  bits[0],
			Value: strings.Trim(bits[1], "\""),
		})
	}
}

func readMoves(r *bufio.Reader, rec *Record) error {
	s := bufio.NewScanner(r)
	s.Split(splitMoves)
	for s.Scan() {
		tok := s.Text()
		common := opCommon{tok}
		switch {
		case tok[0] == '{':
			rec.Ops = append(rec.Ops, &Comment{common, tok[1 : len(tok)-1]})
		case tok[len(tok)-1] == '.':
			n, e := strconv.Atoi(tok[:len(tok)-1])
			if e != nil {
				return e
			}
			rec.Ops = append(rec.Ops, &MoveNumber{common, n})
		case tok == "1-0":
			rec.Ops = append(rec.Ops, &Result{common, toguz.White})
		case tok == "0-1":
			rec.Ops = append(rec.Ops, &Result{common, toguz.Black})
		case tok == "1/2-1/2":
			rec.Ops = append(rec.Ops, &Result{common, toguz.NoSide})
		default:
			trimmed := strings.TrimRight(tok, "x*?!")
			n, e := strconv.Atoi(trimmed)
			if e != nil || n < 1 || n > toguz.RowPits {
				return fmt.Errorf("bad move: %q", tok)
			}
			rec.Ops = append(rec.Ops, &Move{common, n, tok[len(trimmed):]})
		}
	}
	return s.Err()
}

func splitMoves(buf []byte, atEOF bool) (int, []byte, error) {
	start := 0
	for start < len(buf) && unicode.IsSpace(rune(buf[start])) {
		start++
	}
	if start == len(buf) {
		return start, nil, nil
	}
	if buf[start] == '{' {
		for i := start; i < len(buf); i++ {
			if buf[i] == '}' {
				return i + 1, buf[start : i+1], nil
			}
		}
	} else {
		for i := start; i < len(buf); i++ {
			if unicode.IsSpace(rune(buf[i])) {
				return i + 1, buf[start:i], nil
			}
		}
	}
	if atEOF {
		if buf[start] == '{' {
			return 0, nil, errors.New("unterminated comment")
		}
		return len(buf), buf[start:], nil
	}
	return start, nil, nil
}

func skipWS(r *bufio.Reader) error {
	for {
		c, e := r.ReadByte()
		if e != nil {
			return e
		}
		if !unicode.IsSpace(rune(c)) {
			return r.UnreadByte()
		}
	}
}

// FormatRecord renders r in the text form ParseRecord reads.
func FormatRecord(r *Record) string {
	var out bytes.Buffer
	for _, tag := range r.Tags {
		fmt.Fprintf(&out, "[%s \"%s\"]\n",
			tag.Name, strings.Replace(tag.Value, "\"", "", -1),
		)
	}
	out.WriteString("\n")

	first := true
	for _, op := range r.Ops {
		switch o := op.(type) {
		case *MoveNumber:
			if !first {
				out.WriteString("\n")
			}
			fmt.Fprintf(&out, "%d.", o.Number)
		case *Move:
			fmt.Fprintf(&out, " %d%s", o.Number, o.Modifiers)
		case *Comment:
			fmt.Fprintf(&out, " {%s}", o.Comment)
		case *Result:
			fmt.Fprintf(&out, "\n%s", FormatResult(o.Winner))
		}
		first = false
	}
	out.WriteString("\n")
	return out.String()
}
