package room

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"main/internal/game"
	"main/internal/grid"
	"main/internal/protocol"
	"main/internal/stroke"
)

// Snapshot: a room's recoverable state. Optional crash-recovery format;
// live state is process memory only.
type Snapshot struct {
	RoomID       string           `json:"roomId"`
	Name         string           `json:"name"`
	OwnerID      string           `json:"ownerId"`
	OwnerName    string           `json:"ownerName"`
	MaxPlayers   int              `json:"maxPlayers"`
	GameTime     int              `json:"gameTime"`
	CanvasWidth  int              `json:"canvasWidth"`
	CanvasHeight int              `json:"canvasHeight"`
	IsPrivate    bool             `json:"isPrivate"`
	PasswordHash []byte           `json:"passwordHash,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	Strokes      []*stroke.Record `json:"strokes"`
	GridOwners   []string         `json:"gridOwners"`
	Phase        string           `json:"phase"`
	GameStart    time.Time        `json:"gameStart"`
	GameEnd      time.Time        `json:"gameEnd"`
	Winner       string           `json:"winner,omitempty"`
	TakenAt      time.Time        `json:"takenAt"`
}

// Snapshot: captures the room's stroke log, grid and game state
func (r *Room) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Snapshot{
		RoomID:       r.ID,
		Name:         r.Name,
		OwnerID:      r.ownerID,
		OwnerName:    r.ownerName,
		MaxPlayers:   r.MaxPlayers,
		GameTime:     int(r.GameTime / time.Second),
		CanvasWidth:  r.CanvasWidth,
		CanvasHeight: r.CanvasHeight,
		IsPrivate:    r.IsPrivate,
		PasswordHash: r.passwordHash,
		CreatedAt:    r.CreatedAt,
		Strokes:      r.store.Dump(),
		GridOwners:   r.grid.Dump(),
		Phase:        r.game.Phase().String(),
		GameStart:    r.game.StartTime(),
		GameEnd:      r.game.EndTime(),
		Winner:       r.game.WinnerID(),
		TakenAt:      time.Now(),
	}
}

// RestoreRoom: rebuilds a room from a snapshot and registers it. Players
// are not restored; clients re-join and replay the stroke history.
func (m *Manager) RestoreRoom(snap *Snapshot) (*Room, error) {
	if snap.CanvasWidth <= 0 || snap.CanvasHeight <= 0 || snap.MaxPlayers < 1 {
		return nil, fmt.Errorf("invalid snapshot for room %s", snap.RoomID)
	}

	r := newRoom(snap.RoomID, protocol.CreateRoomRequest{
		Name:         snap.Name,
		MaxPlayers:   snap.MaxPlayers,
		GameTime:     snap.GameTime,
		CanvasWidth:  snap.CanvasWidth,
		CanvasHeight: snap.CanvasHeight,
		IsPrivate:    snap.IsPrivate,
	}, snap.OwnerID, snap.OwnerName, snap.PasswordHash)
	r.CreatedAt = snap.CreatedAt

	r.store.Restore(snap.Strokes)
	r.ledger = stroke.NewLedger(r.store)
	if !r.grid.Restore(snap.GridOwners) {
		r.grid = grid.New(snap.CanvasWidth, snap.CanvasHeight)
	}
	r.game = game.RestoreState(snap.Phase, time.Duration(snap.GameTime)*time.Second,
		snap.GameStart, snap.GameEnd, snap.Winner)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rooms[r.ID]; exists {
		return nil, fmt.Errorf("room %s already registered", r.ID)
	}
	m.rooms[r.ID] = r
	return r, nil
}

// SaveSnapshot: writes a room snapshot as JSON under dir
func SaveSnapshot(dir string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, snap.RoomID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot: reads a room snapshot from disk
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
