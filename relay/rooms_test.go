package relay

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazanlab/toguz/toguz"
)

type sent struct {
	typ     string
	payload interface{}
}

type fakePeer struct {
	id   string
	msgs []sent
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(typ string, payload interface{}) {
	p.msgs = append(p.msgs, sent{typ, payload})
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestRooms() (*Rooms, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rs := NewRooms(time.Minute, time.Hour, NewMetrics(prometheus.NewRegistry()))
	rs.now = c.now
	return rs, c
}

func TestCreateJoin(t *testing.T) {
	rs, _ := newTestRooms()
	a, b, c := &fakePeer{id: "a"}, &fakePeer{id: "b"}, &fakePeer{id: "c"}

	code := rs.Create(a, "alice", nil)
	assert.Len(t, code, 6)
	assert.Regexp(t, "^[0-9A-F]{6}$", code)

	require.NoError(t, rs.Join(code, b, "bob", func(r *Room) {
		assert.Len(t, r.Members, 2)
		assert.Equal(t, toguz.Black, r.Members[1].Side)
		assert.Equal(t, [2]string{"alice", "bob"}, r.Names)
	}))
	assert.ErrorIs(t, rs.Join(code, c, "carol", nil), ErrRoomFull)
	assert.ErrorIs(t, rs.Join("NOPE42", c, "carol", nil), ErrRoomNotFound)

	err := rs.With(code, c, func(*Room, Member) error { return nil })
	assert.ErrorIs(t, err, ErrNotInRoom)
	err = rs.With(code, b, func(r *Room, m Member) error {
		assert.Equal(t, toguz.Black, m.Side)
		return nil
	})
	assert.NoError(t, err)
}

func TestLeaveFreesSeat(t *testing.T) {
	rs, _ := newTestRooms()
	a, b, c := &fakePeer{id: "a"}, &fakePeer{id: "b"}, &fakePeer{id: "c"}
	code := rs.Create(a, "alice", nil)
	require.NoError(t, rs.Join(code, b, "bob", nil))

	rs.Leave(a, func(r *Room) {
		r.Broadcast(MsgPlayerLeft, PlayerLeft{})
	})
	require.Len(t, b.msgs, 1)
	assert.Equal(t, MsgPlayerLeft, b.msgs[0].typ)

	// The white seat is free again.
	require.NoError(t, rs.Join(code, c, "carol", func(r *Room) {
		me, ok := r.Member(c)
		require.True(t, ok)
		assert.Equal(t, toguz.White, me.Side)
	}))
}

func TestSweep(t *testing.T) {
	rs, clk := newTestRooms()
	a, b := &fakePeer{id: "a"}, &fakePeer{id: "b"}

	empty := rs.Create(a, "alice", nil)
	busy := rs.Create(b, "bob", nil)
	rs.Leave(a, nil)

	clk.t = clk.t.Add(30 * time.Second)
	assert.Equal(t, 0, rs.Sweep())

	clk.t = clk.t.Add(31 * time.Second)
	assert.Equal(t, 1, rs.Sweep())
	assert.ErrorIs(t, rs.Join(empty, a, "alice", nil), ErrRoomNotFound)

	// Activity keeps the occupied room alive past the idle timeout
	// measured from creation.
	clk.t = clk.t.Add(50 * time.Minute)
	require.NoError(t, rs.With(busy, b, func(*Room, Member) error { return nil }))
	clk.t = clk.t.Add(50 * time.Minute)
	assert.Equal(t, 0, rs.Sweep())

	clk.t = clk.t.Add(11 * time.Minute)
	assert.Equal(t, 1, rs.Sweep())
	assert.Equal(t, 0, rs.Len())
}

func TestRunStops(t *testing.T) {
	rs, _ := newTestRooms()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- rs.Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
