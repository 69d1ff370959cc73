package room

import (
	"sync"
	"time"

	"main/internal/game"
	"main/internal/grid"
	"main/internal/protocol"
	"main/internal/stroke"
	"main/internal/user"
)

// Player: one room member. Survives disconnects for the grace window so
// a reconnecting client keeps its score and undo history.
type Player struct {
	UserID       string
	Username     string
	Color        string
	IsConnected  bool
	LastActivity time.Time
	JoinedAt     time.Time
	X            *float64
	Y            *float64
}

// Room: one isolated session instance. Exclusively owns its stroke
// store, undo ledgers, pixel grid and game state; none of them outlive
// it. Every mutation serializes on the room lock. Hub fan-out is
// enqueue-only, so the manager broadcasts while still holding the lock;
// that keeps a new connection's replay and the live stream consistent.
type Room struct {
	ID           string
	Name         string
	MaxPlayers   int
	GameTime     time.Duration
	CanvasWidth  int
	CanvasHeight int
	IsPrivate    bool
	CreatedAt    time.Time

	ownerID      string
	ownerName    string
	passwordHash []byte

	players  map[string]*Player
	colorGen *user.ColorGenerator

	store  *stroke.Store
	ledger *stroke.Ledger
	grid   *grid.Grid
	game   *game.State

	lastActive time.Time
	closed     bool
	mu         sync.RWMutex
}

func newRoom(id string, req protocol.CreateRoomRequest, ownerID, ownerName string, passwordHash []byte) *Room {
	now := time.Now()
	store := stroke.NewStore()
	return &Room{
		ID:           id,
		Name:         req.Name,
		MaxPlayers:   req.MaxPlayers,
		GameTime:     time.Duration(req.GameTime) * time.Second,
		CanvasWidth:  req.CanvasWidth,
		CanvasHeight: req.CanvasHeight,
		IsPrivate:    req.IsPrivate,
		CreatedAt:    now,
		ownerID:      ownerID,
		ownerName:    ownerName,
		passwordHash: passwordHash,
		players:      make(map[string]*Player),
		colorGen:     user.NewColorGenerator(),
		store:        store,
		ledger:       stroke.NewLedger(store),
		grid:         grid.New(req.CanvasWidth, req.CanvasHeight),
		game:         game.NewState(time.Duration(req.GameTime) * time.Second),
		lastActive:   now,
	}
}

// Join: adds a user to the room, or reconnects a player still inside
// their grace window. New members are rejected while a game is running.
func (r *Room) Join(u *user.User) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}

	if p, exists := r.players[u.ID]; exists {
		p.IsConnected = true
		p.LastActivity = time.Now()
		if u.Username != "" {
			p.Username = u.Username
		}
		r.lastActive = time.Now()
		return p, nil
	}

	if r.game.Phase() == game.PhasePlaying {
		return nil, ErrAlreadyPlaying
	}
	if len(r.players) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}

	now := time.Now()
	p := &Player{
		UserID:       u.ID,
		Username:     u.Username,
		Color:        r.colorGen.NextColor(),
		IsConnected:  true,
		LastActivity: now,
		JoinedAt:     now,
	}
	r.players[u.ID] = p
	r.lastActive = now
	return p, nil
}

// MarkDisconnected: flags a player as gone without removing them, so the
// grace window can reconnect them. Transfers ownership if the owner left
// and ends a running game when fewer than two players remain connected.
// The returned messages must be broadcast by the caller.
func (r *Room) MarkDisconnected(userID string) []protocol.ServerMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[userID]
	if !exists {
		return nil
	}
	p.IsConnected = false
	p.LastActivity = time.Now()
	r.lastActive = time.Now()

	var msgs []protocol.ServerMessage
	if r.ownerID == userID {
		if successor := r.successorLocked(); successor != nil {
			r.ownerID = successor.UserID
			r.ownerName = successor.Username
			msgs = append(msgs, protocol.NewOwnerChanged(successor.UserID, successor.Username))
		}
	}

	if r.game.Phase() == game.PhasePlaying && r.connectedCountLocked() < game.MinPlayers {
		if ended := r.finishLocked(time.Now()); ended != nil {
			msgs = append(msgs, *ended)
		}
	}
	return msgs
}

// RemoveExpired: drops a player whose grace window ran out without a
// reconnect. Returns false when the player is connected again (or gone).
func (r *Room) RemoveExpired(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[userID]
	if !exists || p.IsConnected {
		return false
	}
	delete(r.players, userID)
	r.lastActive = time.Now()
	return true
}

// Remove: drops a player immediately (explicit leave)
func (r *Room) Remove(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[userID]; !exists {
		return false
	}
	delete(r.players, userID)
	r.lastActive = time.Now()
	return true
}

// ApplyDraw: appends a stroke for the identity and claims the painted
// cells on the ownership grid. A draw with no explicit path paints a
// single dab at (x, y). Returns the stroke id and room sequence number.
func (r *Room) ApplyDraw(identity, strokeID string, data protocol.DrawData, points []stroke.Point) (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyDrawLocked(identity, strokeID, data, points)
}

func (r *Room) applyDrawLocked(identity, strokeID string, data protocol.DrawData, points []stroke.Point) (string, uint64) {
	if r.closed {
		return "", 0
	}

	if len(points) == 0 {
		points = []stroke.Point{{X: float64(data.X), Y: float64(data.Y)}}
	}

	st := &stroke.Stroke{
		ID:        strokeID,
		AuthorID:  identity,
		Points:    points,
		Color:     data.Color,
		Size:      float64(data.Size),
		CreatedAt: time.Now(),
	}
	seq := r.ledger.Push(st)
	if seq == 0 {
		return "", 0
	}

	// Score highs are observed on the tick, not here: a paint call stays
	// O(brushSize²) regardless of canvas size.
	for _, pt := range points {
		r.grid.Paint(identity, int(pt.X), int(pt.Y), data.Size)
	}

	if p, exists := r.players[identity]; exists {
		now := time.Now()
		x, y := float64(data.X), float64(data.Y)
		p.LastActivity = now
		p.X = &x
		p.Y = &y
	}
	r.lastActive = time.Now()
	return st.ID, seq
}

// Undo: undoes the identity's most recent stroke. Returns "" when there
// is nothing of theirs to undo; it never touches another identity's
// strokes, and the caller treats "" as a silent no-op.
func (r *Room) Undo(identity string) (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.undoLocked(identity)
}

func (r *Room) undoLocked(identity string) (string, uint64) {
	if r.closed {
		return "", 0
	}
	id := r.ledger.Undo(identity)
	if id == "" {
		return "", 0
	}
	r.lastActive = time.Now()
	return id, r.store.Seq()
}

// Redo: restores the identity's most recently undone stroke
func (r *Room) Redo(identity string) (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redoLocked(identity)
}

func (r *Room) redoLocked(identity string) (string, uint64) {
	if r.closed {
		return "", 0
	}
	id := r.ledger.Redo(identity)
	if id == "" {
		return "", 0
	}
	r.lastActive = time.Now()
	return id, r.store.Seq()
}

// StartGame: moves the room into the playing phase. Owner-only, needs at
// least two connected players, and resets the ownership grid so paint
// from the waiting phase never scores. A start while already playing is
// a no-op; started reports whether the phase actually changed so the
// caller knows not to announce anything.
func (r *Room) StartGame(byUserID string) (protocol.GameStateInfo, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startGameLocked(byUserID)
}

func (r *Room) startGameLocked(byUserID string) (protocol.GameStateInfo, bool, error) {
	if r.closed {
		return protocol.GameStateInfo{}, false, ErrRoomClosed
	}
	if byUserID != r.ownerID {
		return protocol.GameStateInfo{}, false, ErrNotOwner
	}

	started, err := r.game.Start(r.connectedCountLocked(), time.Now())
	if err != nil {
		return protocol.GameStateInfo{}, false, err
	}
	if started {
		r.grid.Reset()
	}
	r.lastActive = time.Now()
	return r.gameStateLocked(), started, nil
}

// Tick: advances time-driven behavior. While playing it emits a
// score-update every call and a game-ended once the time limit elapses.
// Runs on the manager's fixed-interval ticker, serialized against all
// other room mutations by the room lock.
func (r *Room) Tick(now time.Time) []protocol.ServerMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickLocked(now)
}

func (r *Room) tickLocked(now time.Time) []protocol.ServerMessage {
	if r.closed || r.game.Phase() != game.PhasePlaying {
		return nil
	}

	r.game.ObserveScores(r.grid.Scores(), now)

	if r.game.Expired(now) {
		if ended := r.finishLocked(now); ended != nil {
			return []protocol.ServerMessage{*ended}
		}
		return nil
	}
	return []protocol.ServerMessage{protocol.NewScoreUpdate(r.scoresLocked())}
}

// finishLocked: ends the game and builds the game-ended message.
// Callers hold the room lock.
func (r *Room) finishLocked(now time.Time) *protocol.GameEnded {
	finished, err := r.game.Finish(r.grid.Scores(), now)
	if err != nil || !finished {
		return nil
	}

	var winner protocol.Player
	finalScores := make([]protocol.Player, 0, len(r.players))
	for _, p := range r.players {
		wp := r.wirePlayerLocked(p)
		finalScores = append(finalScores, wp)
		if p.UserID == r.game.WinnerID() {
			winner = wp
		}
	}
	msg := protocol.NewGameEnded(winner, finalScores)
	return &msg
}

// Close: marks the room dead so any in-flight operation that raced the
// teardown becomes a no-op
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *Room) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Score: returns the identity's live score straight from the grid
func (r *Room) Score(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grid.Score(identity)
}

// Scores: returns live scores for every player
func (r *Room) Scores() []protocol.PlayerScore {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scoresLocked()
}

func (r *Room) scoresLocked() []protocol.PlayerScore {
	gridScores := r.grid.Scores()
	scores := make([]protocol.PlayerScore, 0, len(r.players))
	for id := range r.players {
		scores = append(scores, protocol.PlayerScore{UserID: id, Score: gridScores[id]})
	}
	return scores
}

// Seq: current room sequence number for replay ordering
func (r *Room) Seq() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Seq()
}

// Phase: current game phase
func (r *Room) Phase() game.Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game.Phase()
}

// OwnerID: current owner (may change on disconnect)
func (r *Room) OwnerID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownerID
}

// Empty: reports whether no players remain, connected or not
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players) == 0
}

// LastActive: time of the most recent mutation
func (r *Room) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// Player: returns a player's wire representation
func (r *Room) Player(userID string) (protocol.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.players[userID]
	if !exists {
		return protocol.Player{}, false
	}
	return r.wirePlayerLocked(p), true
}

// Info: returns the room's public summary. The password hash is never
// exposed; private rooms only show IsPrivate.
func (r *Room) Info() protocol.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.infoLocked()
}

func (r *Room) infoLocked() protocol.RoomInfo {
	return protocol.RoomInfo{
		ID:             r.ID,
		Name:           r.Name,
		OwnerID:        r.ownerID,
		OwnerName:      r.ownerName,
		MaxPlayers:     r.MaxPlayers,
		CurrentPlayers: len(r.players),
		GameTime:       int(r.GameTime / time.Second),
		CanvasWidth:    r.CanvasWidth,
		CanvasHeight:   r.CanvasHeight,
		IsPrivate:      r.IsPrivate || len(r.passwordHash) > 0,
		Status:         r.game.Phase().String(),
		CreatedAt:      r.CreatedAt.UnixMilli(),
	}
}

// Players: returns every member's wire representation
func (r *Room) Players() []protocol.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []protocol.Player {
	players := make([]protocol.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, r.wirePlayerLocked(p))
	}
	return players
}

// GameStateInfo: returns the current game state for the wire
func (r *Room) GameStateInfo() protocol.GameStateInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameStateLocked()
}

func (r *Room) gameStateLocked() protocol.GameStateInfo {
	info := protocol.GameStateInfo{
		Mode:          "color-clash",
		IsActive:      r.game.Phase() == game.PhasePlaying,
		GameTimeLimit: int(r.GameTime / time.Second),
		Players:       r.playersLocked(),
		CanvasWidth:   r.CanvasWidth,
		CanvasHeight:  r.CanvasHeight,
	}
	if !r.game.StartTime().IsZero() {
		start := r.game.StartTime().UnixMilli()
		info.GameStartTime = &start
	}
	if !r.game.EndTime().IsZero() {
		end := r.game.EndTime().UnixMilli()
		info.GameEndTime = &end
	}
	if winnerID := r.game.WinnerID(); winnerID != "" {
		info.Winner = &winnerID
	}
	return info
}

func (r *Room) wirePlayerLocked(p *Player) protocol.Player {
	return protocol.Player{
		UserID:       p.UserID,
		Username:     p.Username,
		Color:        p.Color,
		Score:        r.grid.Score(p.UserID),
		IsConnected:  p.IsConnected,
		LastActivity: p.LastActivity.UnixMilli(),
		X:            p.X,
		Y:            p.Y,
	}
}

func (r *Room) connectedCountLocked() int {
	count := 0
	for _, p := range r.players {
		if p.IsConnected {
			count++
		}
	}
	return count
}

// successorLocked: picks the earliest-joined connected player other than
// the current owner
func (r *Room) successorLocked() *Player {
	var successor *Player
	for _, p := range r.players {
		if p.UserID == r.ownerID || !p.IsConnected {
			continue
		}
		if successor == nil || p.JoinedAt.Before(successor.JoinedAt) {
			successor = p
		}
	}
	return successor
}

func (r *Room) hasPassword() bool {
	return len(r.passwordHash) > 0
}
