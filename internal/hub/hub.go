package hub

import (
	"log"
	"sync"
)

// Subscription: the (room, user) binding of an attached connection.
// The hub holds only this routing metadata, never game state.
type Subscription struct {
	RoomID string
	UserID string
}

// Hub: maps live connections to rooms and fans out room events. Attach
// replays pending state to the new connection before it can see live
// broadcasts, so a late joiner neither misses nor duplicates events.
type Hub struct {
	rooms map[string]map[*Conn]Subscription
	conns map[*Conn]Subscription
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Conn]Subscription),
		conns: make(map[*Conn]Subscription),
	}
}

// Attach: queues the replay frames to the connection and then subscribes
// it to the room's live broadcasts. Both happen under the hub lock, so no
// broadcast can slip between the replay and the subscription.
func (h *Hub) Attach(c *Conn, roomID, userID string, replay [][]byte) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, frame := range replay {
		if err := c.Send(frame); err != nil {
			break
		}
	}

	sub := Subscription{RoomID: roomID, UserID: userID}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Conn]Subscription)
	}
	h.rooms[roomID][c] = sub
	h.conns[c] = sub
	return sub
}

// Detach: unsubscribes a connection and returns its binding. The caller
// decides what to do with the player (grace window, owner transfer).
func (h *Hub) Detach(c *Conn) (Subscription, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, exists := h.conns[c]
	if !exists {
		return Subscription{}, false
	}

	delete(h.conns, c)
	if members := h.rooms[sub.RoomID]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, sub.RoomID)
		}
	}
	return sub, true
}

// Broadcast: sends a message to every connection in a room, optionally
// excluding one. Enqueue only; the per-connection write pumps do the
// socket I/O, so this never blocks on the network.
func (h *Hub) Broadcast(roomID string, msg []byte, exclude *Conn) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		if c == exclude {
			continue
		}
		if err := c.Send(msg); err != nil {
			log.Printf("Broadcast dropped slow connection in room %s", roomID)
		}
	}
}

// SendTo: sends a message to every connection bound to one user in a room
func (h *Hub) SendTo(roomID, userID string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c, sub := range h.rooms[roomID] {
		if sub.UserID == userID {
			c.Send(msg)
		}
	}
}

// CloseRoom: notifies and closes every connection in a room. Used on
// room teardown; in-flight sends to these connections are discarded.
func (h *Hub) CloseRoom(roomID string, notice []byte) {
	h.mu.Lock()
	members := h.rooms[roomID]
	delete(h.rooms, roomID)
	for c := range members {
		delete(h.conns, c)
	}
	h.mu.Unlock()

	for c := range members {
		if notice != nil {
			c.Send(notice)
		}
		c.Close()
	}
}

// ConnectionCount: returns the number of live connections in a room
func (h *Hub) ConnectionCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// UserConnected: reports whether a user still has a live connection in
// the room (a reconnect may race the grace-window removal)
func (h *Hub) UserConnected(roomID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.rooms[roomID] {
		if sub.UserID == userID {
			return true
		}
	}
	return false
}
