package room

import (
	"context"
	"log"
	"sync"
	"time"

	"main/internal/hub"
	"main/internal/protocol"
	"main/internal/stroke"
	"main/internal/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TickInterval drives game-end checks and periodic score broadcasts.
	TickInterval = time.Second

	sweepInterval = 15 * time.Minute
	maxRoomIdle   = 1 * time.Hour
)

// Manager: registry and lifecycle of all rooms in the process. Its own
// lock covers only registry bookkeeping; per-room content is guarded by
// each room's lock, so operations on different rooms never contend.
type Manager struct {
	rooms       map[string]*Room
	hub         *hub.Hub
	sync        *Synchronizer
	graceWindow time.Duration
	maxRooms    int
	mu          sync.RWMutex
}

func NewManager(h *hub.Hub, graceWindow time.Duration, maxRooms int) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		hub:         h,
		sync:        NewSynchronizer(),
		graceWindow: graceWindow,
		maxRooms:    maxRooms,
	}
}

// Create: validates a room spec and registers a new room. The password,
// if any, is bcrypt-hashed and the plaintext is never stored.
func (m *Manager) Create(req protocol.CreateRoomRequest, ownerID, ownerName string) (*Room, error) {
	var passwordHash []byte
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rooms) >= m.maxRooms {
		return nil, ErrAtCapacity
	}

	r := newRoom(uuid.NewString(), req, ownerID, ownerName, passwordHash)
	m.rooms[r.ID] = r
	log.Printf("Room %s created by %s (%q, max %d players)", r.ID, ownerID, r.Name, r.MaxPlayers)
	return r, nil
}

// Hub: the connection hub this manager broadcasts through
func (m *Manager) Hub() *hub.Hub {
	return m.hub
}

// Get: looks up a room by id
func (m *Manager) Get(roomID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, exists := m.rooms[roomID]
	return r, exists
}

// List: returns public summaries of every room. Password-protected rooms
// show up with IsPrivate set but never expose the hash.
func (m *Manager) List() []protocol.RoomInfo {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	return infos
}

// RoomCount: returns the number of registered rooms
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// CheckPassword: verifies a join request's password without admitting
// the user. The socket join repeats the check when membership is taken.
func (m *Manager) CheckPassword(roomID, password string) error {
	r, exists := m.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}
	if r.hasPassword() && bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// Join: checks the room's password and adds the user as a player.
// Members reconnecting inside their grace window skip the password
// check; their identity was already admitted.
func (m *Manager) Join(roomID, password string, u *user.User) (*Room, *Player, error) {
	r, exists := m.Get(roomID)
	if !exists {
		return nil, nil, ErrRoomNotFound
	}

	if r.hasPassword() && !r.isMember(u.ID) {
		if bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) != nil {
			return nil, nil, ErrWrongPassword
		}
	}

	p, err := r.Join(u)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// Attach: replays the room state to a new connection and subscribes it
// to live broadcasts, then announces the player to everyone else. The
// room lock is held across the snapshot and the hub subscription so a
// concurrent mutation can never land in both the replay and the live
// stream.
func (m *Manager) Attach(c *hub.Conn, r *Room, p *Player) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	frames, err := m.sync.replayFramesLocked(r, 0)
	if err != nil {
		return err
	}
	m.hub.Attach(c, r.ID, p.UserID, frames)

	m.broadcast(r.ID, protocol.NewPlayerJoined(r.wirePlayerLocked(p)), c)
	return nil
}

// ApplyDraw: applies a stroke and fans its paint out to the room in one
// critical section. Broadcasting is enqueue-only, so holding the room
// lock here is what keeps a joiner from seeing the stroke both in its
// replay and as a pending live frame.
func (m *Manager) ApplyDraw(r *Room, exclude *hub.Conn, identity, strokeID string, data protocol.DrawData, points []stroke.Point) (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, seq := r.applyDrawLocked(identity, strokeID, data, points)
	if seq == 0 {
		return "", 0
	}

	if len(points) == 0 {
		m.broadcast(r.ID, protocol.NewDrawUpdate(data, identity), exclude)
		return id, seq
	}
	for _, pt := range points {
		d := data
		d.X, d.Y = int(pt.X), int(pt.Y)
		m.broadcast(r.ID, protocol.NewDrawUpdate(d, identity), exclude)
	}
	return id, seq
}

// Undo: retracts the identity's latest stroke and announces it. Nothing
// to undo stays silent.
func (m *Manager) Undo(r *Room, identity string) (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, seq := r.undoLocked(identity)
	if id == "" {
		return "", 0
	}
	m.broadcast(r.ID, protocol.NewStrokeUndone(id, identity, seq), nil)
	return id, seq
}

// Redo: restores the identity's latest undone stroke and announces it
func (m *Manager) Redo(r *Room, identity string) (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, seq := r.redoLocked(identity)
	if id == "" {
		return "", 0
	}
	m.broadcast(r.ID, protocol.NewStrokeRedone(id, identity, seq), nil)
	return id, seq
}

// StartGame: starts the room's game and announces it, unless the game
// was already running; a re-entrant start stays invisible to the room.
func (m *Manager) StartGame(r *Room, byUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gs, started, err := r.startGameLocked(byUserID)
	if err != nil {
		return err
	}
	if started {
		m.broadcast(r.ID, protocol.NewGameStarted(gs), nil)
	}
	return nil
}

// Leave: removes a player immediately and tears the room down when it
// was the last one
func (m *Manager) Leave(roomID, userID string) {
	r, exists := m.Get(roomID)
	if !exists {
		return
	}

	msgs := r.MarkDisconnected(userID)
	for _, msg := range msgs {
		m.broadcast(roomID, msg, nil)
	}

	if r.Remove(userID) {
		m.broadcast(roomID, protocol.NewPlayerLeft(userID), nil)
	}
	if r.Empty() {
		m.teardown(r)
	}
}

// HandleDisconnect: runs the disconnect path for a dropped connection.
// The player is kept for the grace window so a reconnect preserves
// their identity, undo history and score; only after it expires without
// a reconnect are they removed for real.
func (m *Manager) HandleDisconnect(roomID, userID string) {
	r, exists := m.Get(roomID)
	if !exists {
		return
	}

	if m.hub.UserConnected(roomID, userID) {
		// Another connection for the same user is still live.
		return
	}

	for _, msg := range r.MarkDisconnected(userID) {
		m.broadcast(roomID, msg, nil)
	}

	time.AfterFunc(m.graceWindow, func() {
		if m.hub.UserConnected(roomID, userID) {
			return
		}
		if !r.RemoveExpired(userID) {
			return
		}
		log.Printf("Player %s grace window expired in room %s", userID, roomID)
		m.broadcast(roomID, protocol.NewPlayerLeft(userID), nil)
		if r.Empty() {
			m.teardown(r)
		}
	})
}

// Broadcast: encodes and fans a message out to a room, excluding the
// given connection (usually the sender)
func (m *Manager) Broadcast(roomID string, msg protocol.ServerMessage, exclude *hub.Conn) {
	m.broadcast(roomID, msg, exclude)
}

func (m *Manager) broadcast(roomID string, msg protocol.ServerMessage, exclude *hub.Conn) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("Error: marshal broadcast for room %s - %v", roomID, err)
		return
	}
	m.hub.Broadcast(roomID, frame, exclude)
}

// teardown: closes a room and all its connections. Owned state (stroke
// store, ledgers, grid, game) dies with the room.
func (m *Manager) teardown(r *Room) {
	m.mu.Lock()
	delete(m.rooms, r.ID)
	m.mu.Unlock()

	r.Close()
	notice, err := protocol.Encode(protocol.NewRoomClosed(r.ID))
	if err != nil {
		notice = nil
	}
	m.hub.CloseRoom(r.ID, notice)
	log.Printf("Room %s closed", r.ID)
}

// Run: drives the fixed-interval game tick and the idle-room sweep until
// the context is cancelled
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	sweeper := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	defer sweeper.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.tickRooms(now)
		case <-sweeper.C:
			m.sweep()
		}
	}
}

// tickRooms: advances every room's game clock and broadcasts whatever
// the tick produced (score updates, game end)
func (m *Manager) tickRooms(now time.Time) {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	for _, r := range rooms {
		r.mu.Lock()
		for _, msg := range r.tickLocked(now) {
			m.broadcast(r.ID, msg, nil)
		}
		r.mu.Unlock()
	}
}

// sweep: removes rooms that have sat empty past the idle threshold.
// Normal teardown happens when the last player leaves; this catches
// rooms created over HTTP whose owner never connected.
func (m *Manager) sweep() {
	m.mu.RLock()
	var stale []*Room
	now := time.Now()
	for _, r := range m.rooms {
		if r.Empty() && now.Sub(r.LastActive()) > maxRoomIdle {
			stale = append(stale, r)
		}
	}
	m.mu.RUnlock()

	for _, r := range stale {
		m.teardown(r)
	}
}

func (r *Room) isMember(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.players[userID]
	return exists
}
