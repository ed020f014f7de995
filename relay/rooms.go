package relay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/toguz"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("not in this room")
)

const codeLength = 6

// Peer is the room table's view of a connected session.
type Peer interface {
	ID() string
	Send(typ string, payload interface{})
}

type Member struct {
	Peer Peer
	Name string
	Side toguz.Side
}

type Room struct {
	Code string
	// Start is the position the current game began from.
	Start    *toguz.Position
	Position *toguz.Position
	Members  []Member
	// Names of the players seated for the current game, kept after they
	// leave so a finished game can still be credited.
	Names [2]string

	touched    time.Time
	emptySince time.Time
	recorded   bool
}

// Member returns the member using peer, if any.
func (r *Room) Member(peer Peer) (Member, bool) {
	for _, m := range r.Members {
		if m.Peer.ID() == peer.ID() {
			return m, true
		}
	}
	return Member{}, false
}

// Broadcast sends a message to every member of the room.
func (r *Room) Broadcast(typ string, payload interface{}) {
	for _, m := range r.Members {
		m.Peer.Send(typ, payload)
	}
}

// Others sends a message to every member but peer.
func (r *Room) Others(peer Peer, typ string, payload interface{}) {
	for _, m := range r.Members {
		if m.Peer.ID() != peer.ID() {
			m.Peer.Send(typ, payload)
		}
	}
}

// Rooms is the relay's room table. All access to a Room goes through
// its methods, which hold the table lock for the duration.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]*Room

	grace, idle time.Duration
	now         func() time.Time
	metrics     *Metrics
}

func NewRooms(grace, idle time.Duration, metrics *Metrics) *Rooms {
	return &Rooms{
		rooms:   make(map[string]*Room),
		grace:   grace,
		idle:    idle,
		now:     time.Now,
		metrics: metrics,
	}
}

func newCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:codeLength])
}

// Create opens a room with peer seated as White and calls fn on it.
func (rs *Rooms) Create(peer Peer, name string, fn func(*Room)) string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	code := newCode()
	for rs.rooms[code] != nil {
		code = newCode()
	}
	start := toguz.New()
	r := &Room{
		Code:     code,
		Start:    start,
		Position: start,
		Members:  []Member{{Peer: peer, Name: name, Side: toguz.White}},
		Names:    [2]string{name, ""},
		touched:  rs.now(),
	}
	rs.rooms[code] = r
	rs.metrics.Rooms.Set(float64(len(rs.rooms)))
	if fn != nil {
		fn(r)
	}
	return code
}

// Join seats peer as Black in the room code and calls fn on it.
func (rs *Rooms) Join(code string, peer Peer, name string, fn func(*Room)) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	r := rs.rooms[code]
	if r == nil {
		return ErrRoomNotFound
	}
	if len(r.Members) >= 2 {
		return ErrRoomFull
	}
	side := toguz.Black
	if len(r.Members) == 1 && r.Members[0].Side == toguz.Black {
		side = toguz.White
	}
	r.Members = append(r.Members, Member{Peer: peer, Name: name, Side: side})
	r.Names[side] = name
	r.touched = rs.now()
	r.emptySince = time.Time{}
	if fn != nil {
		fn(r)
	}
	return nil
}

// With calls fn on the room code, which peer must be a member of.
func (rs *Rooms) With(code string, peer Peer, fn func(*Room, Member) error) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	r := rs.rooms[code]
	if r == nil {
		return ErrRoomNotFound
	}
	m, ok := r.Member(peer)
	if !ok {
		return ErrNotInRoom
	}
	r.touched = rs.now()
	return fn(r, m)
}

// Leave removes peer from every room it is in and calls fn on each such
// room after the removal.
func (rs *Rooms) Leave(peer Peer, fn func(*Room)) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, r := range rs.rooms {
		kept := r.Members[:0]
		left := false
		for _, m := range r.Members {
			if m.Peer.ID() == peer.ID() {
				left = true
				continue
			}
			kept = append(kept, m)
		}
		if !left {
			continue
		}
		r.Members = kept
		if len(kept) == 0 {
			r.emptySince = rs.now()
		}
		if fn != nil {
			fn(r)
		}
	}
}

func (rs *Rooms) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.rooms)
}

// Sweep removes rooms that have been empty longer than the grace period
// or untouched longer than the idle timeout, and returns how many it
// removed.
func (rs *Rooms) Sweep() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	now := rs.now()
	n := 0
	for code, r := range rs.rooms {
		reason := ""
		switch {
		case now.Sub(r.touched) >= rs.idle:
			reason = "idle"
		case len(r.Members) == 0 && now.Sub(r.emptySince) >= rs.grace:
			reason = "empty"
		default:
			continue
		}
		delete(rs.rooms, code)
		rs.metrics.Reclaimed.WithLabelValues(reason).Inc()
		log.Info().Str("room", code).Str("reason", reason).Msg("room reclaimed")
		n++
	}
	rs.metrics.Rooms.Set(float64(len(rs.rooms)))
	return n
}

// Run sweeps every interval until ctx is done.
func (rs *Rooms) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rs.Sweep()
		}
	}
}
