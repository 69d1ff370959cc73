package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope carries just the type tag of an incoming command so the router
// can pick the concrete payload struct to decode into.
type Envelope struct {
	Type string `json:"type"`
}

// JoinRoomCommand: join-room
type JoinRoomCommand struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
	Username string `json:"username,omitempty"`
}

// DrawCommand: draw. Data is the brush position; Points optionally
// carries the full stroke path for whiteboard strokes (a bare dab paints
// just Data's coordinates). StrokeID lets the client name the stroke so
// its local undo stack lines up with the server's.
type DrawCommand struct {
	Data     DrawData    `json:"data"`
	Points   []PointData `json:"points,omitempty"`
	StrokeID string      `json:"strokeId,omitempty"`
}

// PointData: one path coordinate of a draw command
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChatCommand: chat
type ChatCommand struct {
	Message string `json:"message"`
}

// DecodeCommand: parses the type tag of an incoming client message.
func DecodeCommand(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal command envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("missing message type")
	}
	return env, nil
}

// DecodePayload: decodes the full command into the given payload struct.
func DecodePayload(raw []byte, target interface{}) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("unmarshal command payload: %w", err)
	}
	return nil
}
