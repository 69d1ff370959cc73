package protocol

import "encoding/json"

// Server → client message types
const (
	TypeRoomJoined   = "room-joined"
	TypePlayerJoined = "player-joined"
	TypePlayerLeft   = "player-left"
	TypeGameStarted  = "game-started"
	TypeDrawUpdate   = "draw-update"
	TypeGameEnded    = "game-ended"
	TypeScoreUpdate  = "score-update"
	TypeGameChat     = "game-chat"
	TypeGameState    = "game-state"
	TypeError        = "error"
	TypePong         = "pong"
	TypeOwnerChanged = "owner-changed"
	TypeRoomClosed   = "room-closed"
	TypeStrokeUndone = "stroke-undone"
	TypeStrokeRedone = "stroke-redone"
)

// Client → server command types
const (
	CmdJoinRoom  = "join-room"
	CmdDraw      = "draw"
	CmdUndo      = "undo"
	CmdRedo      = "redo"
	CmdStartGame = "start-game"
	CmdChat      = "chat"
	CmdPing      = "ping"
)

// Player is the wire representation of a room member.
type Player struct {
	UserID       string   `json:"userId"`
	Username     string   `json:"username"`
	Color        string   `json:"color"`
	Score        int      `json:"score"`
	IsConnected  bool     `json:"isConnected"`
	LastActivity int64    `json:"lastActivity"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
}

// RoomInfo is the wire representation of a room summary.
// PasswordHash never appears here; private rooms only expose IsPrivate.
type RoomInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OwnerID        string `json:"ownerId"`
	OwnerName      string `json:"ownerName"`
	MaxPlayers     int    `json:"maxPlayers"`
	CurrentPlayers int    `json:"currentPlayers"`
	GameTime       int    `json:"gameTime"`
	CanvasWidth    int    `json:"canvasWidth"`
	CanvasHeight   int    `json:"canvasHeight"`
	IsPrivate      bool   `json:"isPrivate"`
	Status         string `json:"status"`
	CreatedAt      int64  `json:"createdAt"`
}

// GameStateInfo is the wire representation of a game in progress.
type GameStateInfo struct {
	Mode          string   `json:"mode"`
	IsActive      bool     `json:"isActive"`
	GameStartTime *int64   `json:"gameStartTime"`
	GameTimeLimit int      `json:"gameTimeLimit"`
	Players       []Player `json:"players"`
	CanvasWidth   int      `json:"canvasWidth"`
	CanvasHeight  int      `json:"canvasHeight"`
	Winner        *string  `json:"winner"`
	GameEndTime   *int64   `json:"gameEndTime"`
}

// DrawData carries one paint action.
type DrawData struct {
	X     int    `json:"x" validate:"min=0,max=100000"`
	Y     int    `json:"y" validate:"min=0,max=100000"`
	Color string `json:"color" validate:"required,max=50"`
	Size  int    `json:"size" validate:"required,min=1,max=100"`
}

// PlayerScore is one entry of a score-update message.
type PlayerScore struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// ServerMessage is the tagged union of everything the server pushes to
// clients. Each variant carries its own type tag so clients can dispatch
// without a wrapper envelope.
type ServerMessage interface {
	serverMessage()
}

type RoomJoined struct {
	Type    string   `json:"type"`
	Room    RoomInfo `json:"room"`
	Players []Player `json:"players"`
}

type PlayerJoined struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

type PlayerLeft struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type GameStarted struct {
	Type      string        `json:"type"`
	GameState GameStateInfo `json:"gameState"`
}

type DrawUpdate struct {
	Type   string   `json:"type"`
	Data   DrawData `json:"data"`
	UserID string   `json:"userId"`
}

type GameEnded struct {
	Type        string   `json:"type"`
	Winner      Player   `json:"winner"`
	FinalScores []Player `json:"finalScores"`
}

type ScoreUpdate struct {
	Type   string        `json:"type"`
	Scores []PlayerScore `json:"scores"`
}

type GameChat struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
	ID        string `json:"id,omitempty"`
}

type GameState struct {
	Type      string        `json:"type"`
	Data      GameStateInfo `json:"data"`
	Timestamp int64         `json:"timestamp"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Pong struct {
	Type string `json:"type"`
}

type OwnerChanged struct {
	Type         string `json:"type"`
	NewOwnerID   string `json:"newOwnerId"`
	NewOwnerName string `json:"newOwnerName"`
}

type RoomClosed struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// StrokeUndone / StrokeRedone keep whiteboard clients in sync when a
// stroke toggles between active and inactive. Seq lets a reconnecting
// client detect out-of-order delivery.
type StrokeUndone struct {
	Type     string `json:"type"`
	StrokeID string `json:"strokeId"`
	UserID   string `json:"userId"`
	Seq      uint64 `json:"seq"`
}

type StrokeRedone struct {
	Type     string `json:"type"`
	StrokeID string `json:"strokeId"`
	UserID   string `json:"userId"`
	Seq      uint64 `json:"seq"`
}

func (RoomJoined) serverMessage()   {}
func (PlayerJoined) serverMessage() {}
func (PlayerLeft) serverMessage()   {}
func (GameStarted) serverMessage()  {}
func (DrawUpdate) serverMessage()   {}
func (GameEnded) serverMessage()    {}
func (ScoreUpdate) serverMessage()  {}
func (GameChat) serverMessage()     {}
func (GameState) serverMessage()    {}
func (ErrorMessage) serverMessage() {}
func (Pong) serverMessage()         {}
func (OwnerChanged) serverMessage() {}
func (RoomClosed) serverMessage()   {}
func (StrokeUndone) serverMessage() {}
func (StrokeRedone) serverMessage() {}

func NewRoomJoined(room RoomInfo, players []Player) RoomJoined {
	return RoomJoined{Type: TypeRoomJoined, Room: room, Players: players}
}

func NewPlayerJoined(p Player) PlayerJoined {
	return PlayerJoined{Type: TypePlayerJoined, Player: p}
}

func NewPlayerLeft(userID string) PlayerLeft {
	return PlayerLeft{Type: TypePlayerLeft, UserID: userID}
}

func NewGameStarted(gs GameStateInfo) GameStarted {
	return GameStarted{Type: TypeGameStarted, GameState: gs}
}

func NewDrawUpdate(data DrawData, userID string) DrawUpdate {
	return DrawUpdate{Type: TypeDrawUpdate, Data: data, UserID: userID}
}

func NewGameEnded(winner Player, finalScores []Player) GameEnded {
	return GameEnded{Type: TypeGameEnded, Winner: winner, FinalScores: finalScores}
}

func NewScoreUpdate(scores []PlayerScore) ScoreUpdate {
	return ScoreUpdate{Type: TypeScoreUpdate, Scores: scores}
}

func NewGameChat(message, username string, timestamp int64, id string) GameChat {
	return GameChat{Type: TypeGameChat, Message: message, Username: username, Timestamp: timestamp, ID: id}
}

func NewGameState(data GameStateInfo, timestamp int64) GameState {
	return GameState{Type: TypeGameState, Data: data, Timestamp: timestamp}
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

func NewPong() Pong {
	return Pong{Type: TypePong}
}

func NewOwnerChanged(newOwnerID, newOwnerName string) OwnerChanged {
	return OwnerChanged{Type: TypeOwnerChanged, NewOwnerID: newOwnerID, NewOwnerName: newOwnerName}
}

func NewRoomClosed(roomID string) RoomClosed {
	return RoomClosed{Type: TypeRoomClosed, RoomID: roomID}
}

func NewStrokeUndone(strokeID, userID string, seq uint64) StrokeUndone {
	return StrokeUndone{Type: TypeStrokeUndone, StrokeID: strokeID, UserID: userID, Seq: seq}
}

func NewStrokeRedone(strokeID, userID string, seq uint64) StrokeRedone {
	return StrokeRedone{Type: TypeStrokeRedone, StrokeID: strokeID, UserID: userID, Seq: seq}
}

// Encode: marshals a server message for the wire.
func Encode(m ServerMessage) ([]byte, error) {
	return json.Marshal(m)
}
