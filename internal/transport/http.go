package transport

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"
)

// HTTPHandler serves the room REST API. Room membership itself moves
// over the WebSocket; these endpoints only create and browse rooms.
type HTTPHandler struct {
	rooms     *room.Manager
	sessions  *user.SessionManager
	validator *protocol.Validator
}

func NewHTTPHandler(rooms *room.Manager, sessions *user.SessionManager, validator *protocol.Validator) *HTTPHandler {
	return &HTTPHandler{
		rooms:     rooms,
		sessions:  sessions,
		validator: validator,
	}
}

// Register mounts the API routes on the given mux
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /rooms", h.ListRooms)
	mux.HandleFunc("POST /rooms", h.CreateRoom)
	mux.HandleFunc("GET /rooms/{id}", h.GetRoom)
	mux.HandleFunc("POST /rooms/{id}/join", h.JoinRoom)
}

type createRoomBody struct {
	protocol.CreateRoomRequest
	Username string `json:"username,omitempty"`
}

type createRoomResponse struct {
	Room         protocol.RoomInfo `json:"room"`
	OwnerID      string            `json:"ownerId"`
	SessionToken string            `json:"sessionToken"`
}

// CreateRoom: registers a new room and mints the owner's session. The
// returned token is what the owner presents when it opens its WebSocket,
// so the socket identity matches the ownership recorded here.
func (h *HTTPHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.ValidateCreateRoom(&body.CreateRoomRequest); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerName := h.validator.Sanitize(body.Username)
	if ownerName == "" {
		ownerName = "guest"
	}
	ownerID := user.NewGuestID()
	session := h.sessions.GetOrCreate(ownerID, ownerName, true)

	created, err := h.rooms.Create(body.CreateRoomRequest, ownerID, ownerName)
	if err != nil {
		if errors.Is(err, room.ErrAtCapacity) {
			writeError(w, http.StatusServiceUnavailable, "server is at room capacity")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not create room")
		return
	}
	log.Printf("Room %s created by %s", created.ID, ownerID)

	writeJSON(w, http.StatusCreated, createRoomResponse{
		Room:         created.Info(),
		OwnerID:      ownerID,
		SessionToken: session.SessionToken,
	})
}

// ListRooms: the room directory. Password-protected rooms are listed
// with isPrivate set; the hash itself never leaves the registry.
func (h *HTTPHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rooms.List())
}

type joinRoomResponse struct {
	Room         protocol.RoomInfo `json:"room"`
	UserID       string            `json:"userId"`
	SessionToken string            `json:"sessionToken"`
}

// JoinRoom: password preflight for a room. On success it mints the
// caller's session; membership itself is taken when the client connects
// its WebSocket with the returned token and sends join-room.
func (h *HTTPHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")

	var body protocol.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.ValidateJoinRoom(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.rooms.CheckPassword(roomID, body.Password); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "room not found")
		case errors.Is(err, room.ErrWrongPassword):
			writeError(w, http.StatusForbidden, "wrong password")
		default:
			writeError(w, http.StatusInternalServerError, "could not join room")
		}
		return
	}
	rm, exists := h.rooms.Get(roomID)
	if !exists {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	username := body.Username
	if username == "" {
		username = "guest"
	}
	userID := user.NewGuestID()
	session := h.sessions.GetOrCreate(userID, username, true)

	writeJSON(w, http.StatusOK, joinRoomResponse{
		Room:         rm.Info(),
		UserID:       userID,
		SessionToken: session.SessionToken,
	})
}

// GetRoom: summary of a single room
func (h *HTTPHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	rm, exists := h.rooms.Get(r.PathValue("id"))
	if !exists {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, rm.Info())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
