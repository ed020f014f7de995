package netplay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kazanlab/toguz/relay"
	"github.com/kazanlab/toguz/toguz"
)

var ErrClosed = errors.New("connection closed")

// RelayError is a gameError message received in reply to a request.
type RelayError struct {
	Message string
}

func (e *RelayError) Error() string {
	return "relay: " + e.Message
}

type Commands struct {
	Client
}

// await reads until a message of type typ, which it decodes into out,
// or a gameError.
func (c *Commands) await(typ string, out interface{}) error {
	for env := range c.Recv() {
		switch env.Type {
		case typ:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(env.Payload, out); err != nil {
				return fmt.Errorf("decode %s: %w", typ, err)
			}
			return nil
		case relay.MsgGameError:
			var e relay.GameError
			json.Unmarshal(env.Payload, &e)
			return &RelayError{Message: e.Message}
		}
	}
	if err := c.Error(); err != nil {
		return err
	}
	return ErrClosed
}

func (c *Commands) CreateRoom(name string) (*relay.RoomCreated, error) {
	c.Send(relay.MsgCreateRoom, relay.CreateRoom{PlayerName: name})
	var out relay.RoomCreated
	if err := c.await(relay.MsgRoomCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Commands) JoinRoom(code, name string) (*relay.RoomJoined, error) {
	c.Send(relay.MsgJoinRoom, relay.JoinRoom{RoomCode: code, PlayerName: name})
	var out relay.RoomJoined
	if err := c.await(relay.MsgRoomJoined, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForOpponent blocks until someone joins the room this client
// created.
func (c *Commands) WaitForOpponent() (*relay.PlayerJoined, error) {
	var out relay.PlayerJoined
	if err := c.await(relay.MsgPlayerJoined, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Play asks the relay to play pit for this client's seat.
func (c *Commands) Play(code string, pit int) {
	c.Send(relay.MsgPlay, relay.Play{RoomCode: code, Pit: &pit})
}

// SubmitBoard sends the board produced by side's move.
func (c *Commands) SubmitBoard(code string, p *toguz.Position, side toguz.Side) {
	c.Send(relay.MsgMove, relay.SubmitBoard{RoomCode: code, Board: p.Snapshot(), Player: &side})
}

func (c *Commands) NewGame(code string) {
	c.Send(relay.MsgNewGame, relay.NewGame{RoomCode: code})
}
