// Package relay pairs two players in a room and passes game positions
// between them over websockets.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kazanlab/toguz/logs"
	"github.com/kazanlab/toguz/toguz"
)

// GameRecorder receives every game that finishes in a room.
type GameRecorder interface {
	InsertGame(g *logs.Game) error
}

type Server struct {
	cfg      Config
	rooms    *Rooms
	metrics  *Metrics
	registry *prometheus.Registry
	games    GameRecorder
	upgrader websocket.Upgrader
}

// NewServer builds a relay. games may be nil.
func NewServer(cfg Config, games GameRecorder) *Server {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	return &Server{
		cfg:      cfg,
		rooms:    NewRooms(cfg.EmptyGrace, cfg.IdleTimeout, metrics),
		metrics:  metrics,
		registry: reg,
		games:    games,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Rooms() *Rooms {
	return s.rooms
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":    true,
			"rooms": s.rooms.Len(),
		})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/ws", s.ServeWS)
	return r
}

// Run serves on cfg.Addr and sweeps rooms until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.rooms.Run(ctx, s.cfg.SweepInterval)
	})
	g.Go(func() error {
		log.Info().Str("addr", s.cfg.Addr).Msg("relay listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrade")
		return
	}
	id := uuid.NewString()
	sess := &Session{
		id:      id,
		send:    make(chan []byte, s.cfg.SendBuffer),
		limiter: rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst),
		metrics: s.metrics,
		log: log.With().
			Str("session", id).
			Str("remote", r.RemoteAddr).
			Str("request", middleware.GetReqID(r.Context())).
			Logger(),
	}
	s.metrics.Sessions.Inc()
	sess.log.Info().Msg("connected")

	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, sess.send, s.cfg.PingInterval); err != nil {
			sess.log.Debug().Err(err).Msg("writer exiting")
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if !sess.limiter.Allow() {
			sess.Send(MsgGameError, GameError{Message: "Slow down"})
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.Send(MsgGameError, GameError{Message: "Malformed message"})
			continue
		}
		s.handle(sess, &env)
	}

	s.rooms.Leave(sess, func(r *Room) {
		r.Broadcast(MsgPlayerLeft, PlayerLeft{})
	})
	sess.close()
	s.metrics.Sessions.Dec()
	sess.log.Info().Msg("disconnected")
}

func (s *Server) handle(sess *Session, env *Envelope) {
	s.metrics.Messages.WithLabelValues(env.Type).Inc()
	var err error
	switch env.Type {
	case MsgCreateRoom:
		err = s.createRoom(sess, env.Payload)
	case MsgJoinRoom:
		err = s.joinRoom(sess, env.Payload)
	case MsgMove:
		err = s.submitBoard(sess, env.Payload)
	case MsgPlay:
		err = s.play(sess, env.Payload)
	case MsgNewGame:
		err = s.newGame(sess, env.Payload)
	case MsgPing, MsgPong:
	default:
		err = errUnknownType
	}
	if err != nil {
		sess.log.Info().Err(err).Str("type", env.Type).Msg("request failed")
		sess.Send(MsgGameError, GameError{Message: clientMessage(err)})
	}
}

var (
	errUnknownType = errors.New("unknown message type")
	errMalformed   = errors.New("malformed payload")
	errWrongSeat   = errors.New("player does not match seat")
)

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errMalformed
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errMalformed
	}
	return nil
}

// clientMessage is the text shown to the player for err.
func clientMessage(err error) string {
	var illegal *toguz.IllegalMoveError
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, ErrRoomFull):
		return "Room is full"
	case errors.Is(err, ErrNotInRoom):
		return "Not in this room"
	case errors.As(err, &illegal):
		return "Invalid move: " + illegal.Err.Error()
	case errors.Is(err, ErrRejected), errors.Is(err, errWrongSeat):
		return "Invalid move"
	case errors.Is(err, errUnknownType):
		return "Unknown message type"
	}
	return "Malformed message"
}

func orDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

func (s *Server) createRoom(sess *Session, raw json.RawMessage) error {
	var req CreateRoom
	if len(raw) > 0 {
		if err := decode(raw, &req); err != nil {
			return err
		}
	}
	name := orDefault(req.PlayerName, "Player 1")
	code := s.rooms.Create(sess, name, func(r *Room) {
		sess.Send(MsgRoomCreated, RoomCreated{RoomCode: r.Code, Board: r.Position, Color: toguz.White})
	})
	sess.log.Info().Str("room", code).Str("name", name).Msg("room created")
	return nil
}

func (s *Server) joinRoom(sess *Session, raw json.RawMessage) error {
	var req JoinRoom
	if err := decode(raw, &req); err != nil {
		return err
	}
	name := orDefault(req.PlayerName, "Player 2")
	return s.rooms.Join(req.RoomCode, sess, name, func(r *Room) {
		me, _ := r.Member(sess)
		sess.Send(MsgRoomJoined, RoomJoined{
			RoomCode:     r.Code,
			Board:        r.Position,
			OpponentName: r.Names[me.Side.Flip()],
			Color:        me.Side,
		})
		r.Others(sess, MsgPlayerJoined, PlayerJoined{Board: r.Position, PlayerName: name})
		sess.log.Info().Str("room", r.Code).Str("name", name).Msg("joined")
	})
}

// submitBoard handles a client that played the move itself and sends the
// whole resulting board.
func (s *Server) submitBoard(sess *Session, raw json.RawMessage) error {
	var req SubmitBoard
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.Player == nil {
		return errMalformed
	}
	player := *req.Player
	var finished *logs.Game
	err := s.rooms.With(req.RoomCode, sess, func(r *Room, m Member) error {
		if m.Side != player {
			return errWrongSeat
		}
		if err := Validate(r.Position, req.Board, player); err != nil {
			return err
		}
		next, err := req.Board.Position()
		if err != nil {
			return &Rejection{Reason: err.Error()}
		}
		r.Position = next
		r.Broadcast(MsgMove, Moved{Board: next, Player: player})
		finished = s.finished(r)
		return nil
	})
	if errors.Is(err, ErrRejected) || errors.Is(err, errWrongSeat) {
		s.metrics.Rejected.WithLabelValues("board").Inc()
	}
	s.record(finished)
	return err
}

// play handles a client that sends only its pit; the relay runs the move.
func (s *Server) play(sess *Session, raw json.RawMessage) error {
	var req Play
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.Pit == nil {
		return errMalformed
	}
	pit := *req.Pit
	var finished *logs.Game
	err := s.rooms.With(req.RoomCode, sess, func(r *Room, m Member) error {
		next, err := r.Position.Move(m.Side, pit)
		if err != nil {
			return err
		}
		r.Position = next
		r.Broadcast(MsgMove, Moved{Board: next, Player: m.Side, Pit: &pit})
		finished = s.finished(r)
		return nil
	})
	if errors.Is(err, toguz.ErrIllegalMove) {
		s.metrics.Rejected.WithLabelValues("pit").Inc()
	}
	s.record(finished)
	return err
}

func (s *Server) newGame(sess *Session, raw json.RawMessage) error {
	var req NewGame
	if err := decode(raw, &req); err != nil {
		return err
	}
	return s.rooms.With(req.RoomCode, sess, func(r *Room, _ Member) error {
		r.Start = toguz.New()
		r.Position = r.Start
		r.recorded = false
		r.Names = [2]string{}
		for _, m := range r.Members {
			r.Names[m.Side] = m.Name
		}
		r.Broadcast(MsgNewGame, NewGameStarted{Board: r.Position})
		return nil
	})
}

// finished returns the log entry for r's game the first time it is seen
// over. Called with the room table locked.
func (s *Server) finished(r *Room) *logs.Game {
	over, winner := r.Position.GameOver()
	if !over || r.recorded {
		return nil
	}
	r.recorded = true
	s.metrics.Finished.Inc()
	log.Info().Str("room", r.Code).Stringer("winner", winner).
		Int("white", r.Position.Store(toguz.White)).
		Int("black", r.Position.Store(toguz.Black)).
		Msg("game over")
	if s.games == nil {
		return nil
	}
	g, err := logs.NewGame(r.Names[toguz.White], r.Names[toguz.Black], r.Start, r.Position, time.Now())
	if err != nil {
		log.Warn().Err(err).Str("room", r.Code).Msg("cannot record game")
		return nil
	}
	return g
}

func (s *Server) record(g *logs.Game) {
	if g == nil {
		return
	}
	if err := s.games.InsertGame(g); err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("insert game")
	}
}
