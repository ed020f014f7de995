// Package netplay connects to a relay and plays games through it.
package netplay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kazanlab/toguz/relay"
)

type Client interface {
	Recv() <-chan relay.Envelope
	Send(typ string, payload interface{})

	Error() error
	Shutdown()
}

type client struct {
	conn *websocket.Conn

	Debug bool

	err error

	recv     chan relay.Envelope
	send     chan []byte
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup

	last struct {
		sync.Mutex
		buf [5]string
		i   int
	}
}

func (c *client) Error() error {
	return c.err
}

// Dial connects to a relay's websocket endpoint, such as
// ws://localhost:5000/ws. A ping is sent whenever ping elapses.
func Dial(ctx context.Context, url string, ping time.Duration, debug bool) (Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &client{
		conn:     conn,
		Debug:    debug,
		recv:     make(chan relay.Envelope),
		send:     make(chan []byte),
		shutdown: make(chan struct{}),
	}
	c.wg.Add(2)
	go c.recvThread()
	go c.sendThread(ping)
	return c, nil
}

func (c *client) logSent(l string) {
	c.last.Lock()
	defer c.last.Unlock()
	c.last.buf[c.last.i] = l
	c.last.i = (c.last.i + 1) % len(c.last.buf)
}

func (c *client) lastSent() []string {
	out := make([]string, 0, len(c.last.buf))
	c.last.Lock()
	defer c.last.Unlock()
	for i := 1; i <= len(c.last.buf); i++ {
		j := (c.last.i - i + len(c.last.buf)) % len(c.last.buf)
		if c.last.buf[j] != "" {
			out = append(out, c.last.buf[j])
		}
	}
	return out
}

func (c *client) recvThread() {
	defer c.wg.Done()
	defer close(c.recv)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.err = err
			return
		}
		if c.Debug {
			log.Debug().Str("msg", string(data)).Msg("<")
		}
		var env relay.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Err(err).Msg("undecodable message")
			continue
		}
		switch env.Type {
		case relay.MsgPing, relay.MsgPong:
			continue
		case relay.MsgGameError:
			log.Warn().RawJSON("payload", env.Payload).Strs("last", c.lastSent()).Msg("relay error")
		}
		select {
		case c.recv <- env:
		case <-c.shutdown:
			return
		}
	}
}

func (c *client) sendThread(ping time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(ping)
	defer ticker.Stop()
	pingMsg, _ := relay.Encode(relay.MsgPing, nil)
	for {
		var msg []byte
		select {
		case msg = <-c.send:
		case <-ticker.C:
			msg = pingMsg
		case <-c.shutdown:
			return
		}
		if c.Debug {
			log.Debug().Str("msg", string(msg)).Msg(">")
		}
		c.logSent(string(msg))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warn().Err(err).Msg("write")
		}
	}
}

func (c *client) Send(typ string, payload interface{}) {
	data, err := relay.Encode(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("type", typ).Msg("encode")
		return
	}
	select {
	case c.send <- data:
	case <-c.shutdown:
	}
}

func (c *client) Recv() <-chan relay.Envelope {
	return c.recv
}

func (c *client) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)
		c.conn.Close()
		c.wg.Wait()
	})
}
