package relay

import (
	"encoding/json"

	"github.com/kazanlab/toguz/toguz"
)

// Message types on the wire.
const (
	MsgCreateRoom = "createRoom"
	MsgJoinRoom   = "joinRoom"
	MsgMove       = "move"
	MsgPlay       = "play"
	MsgNewGame    = "newGame"

	MsgRoomCreated  = "roomCreated"
	MsgRoomJoined   = "roomJoined"
	MsgPlayerJoined = "playerJoined"
	MsgPlayerLeft   = "playerLeft"
	MsgGameError    = "gameError"

	MsgPing = "ping"
	MsgPong = "pong"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// SubmitBoard carries a whole board claimed as the result of Player's
// move. Player and Board are required.
type SubmitBoard struct {
	RoomCode string          `json:"roomCode"`
	Board    *toguz.Snapshot `json:"board"`
	Player   *toguz.Side     `json:"player"`
}

// Play asks the relay to play Pit for the sender's seat. Pit is
// required.
type Play struct {
	RoomCode string `json:"roomCode"`
	Pit      *int   `json:"pit"`
}

type NewGame struct {
	RoomCode string `json:"roomCode"`
}

type RoomCreated struct {
	RoomCode string          `json:"roomCode"`
	Board    *toguz.Position `json:"board"`
	Color    toguz.Side      `json:"color"`
}

type RoomJoined struct {
	RoomCode     string          `json:"roomCode"`
	Board        *toguz.Position `json:"board"`
	OpponentName string          `json:"opponentName"`
	Color        toguz.Side      `json:"color"`
}

type PlayerJoined struct {
	Board      *toguz.Position `json:"board"`
	PlayerName string          `json:"playerName"`
}

// Moved announces an accepted move. Pit is set when the relay played the
// move itself.
type Moved struct {
	Board  *toguz.Position `json:"board"`
	Player toguz.Side      `json:"player"`
	Pit    *int            `json:"pit,omitempty"`
}

type NewGameStarted struct {
	Board *toguz.Position `json:"board"`
}

type PlayerLeft struct {
	PlayerName string `json:"playerName,omitempty"`
}

type GameError struct {
	Message string `json:"message"`
}

// Encode builds the wire form of a message.
func Encode(typ string, payload interface{}) ([]byte, error) {
	env := Envelope{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
