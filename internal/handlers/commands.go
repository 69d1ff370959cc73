package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"main/internal/protocol"
	"main/internal/room"
	"main/internal/stroke"
)

// handleJoinRoom: admits the connection into a room, replays the room
// state to it and announces the player to everyone already there
func (mr *MessageRouter) handleJoinRoom(c *Client, raw []byte) error {
	var cmd protocol.JoinRoomCommand
	if err := protocol.DecodePayload(raw, &cmd); err != nil {
		return mr.sendError(c, "invalid join-room payload")
	}
	if cmd.RoomID == "" {
		return mr.sendError(c, "roomId is required")
	}
	if c.Room != nil {
		return mr.sendError(c, "already in a room")
	}

	if cmd.Username != "" {
		c.User.Username = mr.validator.Sanitize(cmd.Username)
	}

	r, p, err := mr.rooms.Join(cmd.RoomID, cmd.Password, c.User)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			return mr.sendError(c, "room not found")
		case errors.Is(err, room.ErrWrongPassword):
			return mr.sendError(c, "wrong password")
		case errors.Is(err, room.ErrRoomFull):
			return mr.sendError(c, "room is full")
		case errors.Is(err, room.ErrAlreadyPlaying):
			return mr.sendError(c, "game already in progress")
		default:
			return mr.sendError(c, "could not join room")
		}
	}

	if err := mr.rooms.Attach(c.Conn, r, p); err != nil {
		return err
	}
	c.Room = r
	mr.sessions.SetLastRoom(c.User.ID, r.ID)

	log.Printf("User %s joined room %s", c.User.ID, r.ID)
	return nil
}

// handleDraw: records a stroke, claims the painted cells and relays the
// paint to the rest of the room. Drawing before joining a room is a
// silent no-op.
func (mr *MessageRouter) handleDraw(c *Client, raw []byte) error {
	if c.Room == nil {
		return nil
	}

	var cmd protocol.DrawCommand
	if err := protocol.DecodePayload(raw, &cmd); err != nil {
		return mr.sendError(c, "invalid draw payload")
	}
	if err := mr.validator.ValidateDraw(&cmd.Data); err != nil {
		return mr.sendError(c, err.Error())
	}
	if !mr.limits.ValidateStrokePoints(len(cmd.Points)) {
		return mr.sendError(c, "stroke has too many points")
	}

	strokeID := cmd.StrokeID
	if strokeID == "" {
		strokeID = uuid.NewString()
	}

	points := make([]stroke.Point, 0, len(cmd.Points))
	for _, pt := range cmd.Points {
		points = append(points, stroke.Point{X: pt.X, Y: pt.Y})
	}

	mr.rooms.ApplyDraw(c.Room, c.Conn, c.User.ID, strokeID, cmd.Data, points)
	return nil
}

// handleUndo: retracts the sender's most recent stroke. Nothing of
// theirs to undo is a silent no-op; identities never cross.
func (mr *MessageRouter) handleUndo(c *Client) error {
	if c.Room == nil {
		return nil
	}
	mr.rooms.Undo(c.Room, c.User.ID)
	return nil
}

// handleRedo: restores the sender's most recently undone stroke
func (mr *MessageRouter) handleRedo(c *Client) error {
	if c.Room == nil {
		return nil
	}
	mr.rooms.Redo(c.Room, c.User.ID)
	return nil
}

// handleStartGame: owner-only transition into the playing phase. A
// non-owner asking is a silent no-op; a real rule violation (not enough
// players, game already over) goes back to the sender. Starting a game
// that is already running announces nothing.
func (mr *MessageRouter) handleStartGame(c *Client) error {
	if c.Room == nil {
		return nil
	}
	if err := mr.rooms.StartGame(c.Room, c.User.ID); err != nil {
		if errors.Is(err, room.ErrNotOwner) {
			return nil
		}
		return mr.sendError(c, err.Error())
	}
	return nil
}

// handleChat: relays a chat line to the whole room, sender included
func (mr *MessageRouter) handleChat(c *Client, raw []byte) error {
	if c.Room == nil {
		return nil
	}
	var cmd protocol.ChatCommand
	if err := protocol.DecodePayload(raw, &cmd); err != nil {
		return mr.sendError(c, "invalid chat payload")
	}
	message := mr.validator.Sanitize(cmd.Message)
	if message == "" {
		return nil
	}
	msg := protocol.NewGameChat(message, c.User.Username, time.Now().UnixMilli(), uuid.NewString())
	mr.rooms.Broadcast(c.Room.ID, msg, nil)
	return nil
}

// handlePing: liveness probe, answered to the sender only
func (mr *MessageRouter) handlePing(c *Client) error {
	frame, err := protocol.Encode(protocol.NewPong())
	if err != nil {
		return err
	}
	return c.Conn.Send(frame)
}
