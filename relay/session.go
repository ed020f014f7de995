package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Session is one websocket connection.
type Session struct {
	id      string
	send    chan []byte
	limiter *rate.Limiter
	metrics *Metrics
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func (s *Session) ID() string {
	return s.id
}

// Send queues a message without blocking; it is dropped if the
// session's buffer is full or the session has closed.
func (s *Session) Send(typ string, payload interface{}) {
	data, err := Encode(typ, payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", typ).Msg("encode")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.metrics.Dropped.Inc()
		s.log.Warn().Str("type", typ).Msg("send buffer full, dropping")
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// writeWithHeartbeat drains send onto conn, writing a ping message
// whenever the connection has been quiet for interval.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, err := Encode(MsgPing, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
