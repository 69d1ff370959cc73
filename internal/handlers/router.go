package handlers

import (
	"fmt"
	"log"

	"main/internal/hub"
	"main/internal/middleware"
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"
)

// Client: per-connection state threaded through the router. Room is nil
// until the connection joins one.
type Client struct {
	Conn *hub.Conn
	User *user.User
	Room *room.Room
}

// MessageRouter routes incoming commands to the appropriate handlers
type MessageRouter struct {
	rooms     *room.Manager
	limits    *middleware.Limits
	validator *protocol.Validator
	sessions  *user.SessionManager
}

func NewMessageRouter(
	rooms *room.Manager,
	limits *middleware.Limits,
	validator *protocol.Validator,
	sessions *user.SessionManager,
) *MessageRouter {
	return &MessageRouter{
		rooms:     rooms,
		limits:    limits,
		validator: validator,
		sessions:  sessions,
	}
}

// Route: processes one client command. Validation and state errors are
// reported back to the sender only; authorization failures (acting on
// someone else's strokes, drawing before joining) are silent no-ops.
func (mr *MessageRouter) Route(c *Client, raw []byte) error {
	if !mr.limits.ValidateMessageSize(len(raw)) {
		return mr.sendError(c, "message too large")
	}
	if c.User.Session != nil && !c.User.Session.RateLimiter.Allow() {
		return nil // Drop to throttle
	}

	env, err := protocol.DecodeCommand(raw)
	if err != nil {
		return err
	}

	switch env.Type {
	case protocol.CmdJoinRoom:
		return mr.handleJoinRoom(c, raw)
	case protocol.CmdDraw:
		return mr.handleDraw(c, raw)
	case protocol.CmdUndo:
		return mr.handleUndo(c)
	case protocol.CmdRedo:
		return mr.handleRedo(c)
	case protocol.CmdStartGame:
		return mr.handleStartGame(c)
	case protocol.CmdChat:
		return mr.handleChat(c, raw)
	case protocol.CmdPing:
		return mr.handlePing(c)
	default:
		return fmt.Errorf("unknown message type: %s", env.Type)
	}
}

// Disconnect: runs the disconnect path when a connection's read loop
// exits for any reason
func (mr *MessageRouter) Disconnect(c *Client) {
	sub, detached := mr.roomsHub().Detach(c.Conn)
	if !detached {
		return
	}
	mr.rooms.HandleDisconnect(sub.RoomID, sub.UserID)
	log.Printf("User %s disconnected from room %s", sub.UserID, sub.RoomID)
}

// sendError: reports a failure to the originating connection only
func (mr *MessageRouter) sendError(c *Client, message string) error {
	frame, err := protocol.Encode(protocol.NewError(message))
	if err != nil {
		return fmt.Errorf("marshal error message: %w", err)
	}
	return c.Conn.Send(frame)
}

func (mr *MessageRouter) roomsHub() *hub.Hub {
	return mr.rooms.Hub()
}
