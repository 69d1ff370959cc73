package room

import (
	"testing"
	"time"

	"main/internal/game"
	"main/internal/protocol"
)

func testRoom(t *testing.T, maxPlayers int) *Room {
	t.Helper()
	req := testRoomRequest()
	req.MaxPlayers = maxPlayers
	m := testManager()
	r, err := m.Create(req, "u1", "One")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	return r
}

func TestRoom_StartGameRules(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))

	// One connected player: too few.
	if _, _, err := r.StartGame("u1"); err != game.ErrNotEnoughPlayers {
		t.Errorf("StartGame() error = %v, want ErrNotEnoughPlayers", err)
	}

	r.Join(testUser("u2"))

	// Only the owner can start.
	if _, _, err := r.StartGame("u2"); err != ErrNotOwner {
		t.Errorf("StartGame() by member error = %v, want ErrNotOwner", err)
	}

	gs, started, err := r.StartGame("u1")
	if err != nil {
		t.Fatalf("StartGame() unexpected error: %v", err)
	}
	if !started {
		t.Error("StartGame() did not report the phase change")
	}
	if !gs.IsActive {
		t.Error("StartGame() gameState not active")
	}
	if gs.GameStartTime == nil {
		t.Error("StartGame() gameStartTime missing")
	}
	if r.Phase() != game.PhasePlaying {
		t.Errorf("Phase() = %v, want playing", r.Phase())
	}

	// Already playing: a repeat start is a silent no-op.
	if _, started, err := r.StartGame("u1"); err != nil || started {
		t.Errorf("StartGame() repeat = (%v, %v), want no-op", started, err)
	}
}

func TestRoom_StartResetsGrid(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.Join(testUser("u2"))

	// Paint during the waiting phase must not score once the game starts.
	r.ApplyDraw("u1", "s1", protocol.DrawData{X: 100, Y: 100, Color: "rgb(255,0,0)", Size: 5}, nil)
	if r.Score("u1") == 0 {
		t.Fatal("ApplyDraw() before game painted nothing")
	}

	if _, _, err := r.StartGame("u1"); err != nil {
		t.Fatalf("StartGame() unexpected error: %v", err)
	}
	if got := r.Score("u1"); got != 0 {
		t.Errorf("Score() after game start = %d, want 0", got)
	}
}

func TestRoom_DrawUpdatesScoreImmediately(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))

	id, seq := r.ApplyDraw("u1", "s1", protocol.DrawData{X: 50, Y: 50, Color: "rgb(255,0,0)", Size: 4}, nil)
	if id == "" || seq == 0 {
		t.Fatalf("ApplyDraw() = (%q, %d), want stroke id and seq", id, seq)
	}

	// Score is read straight from the grid; no stale cache possible.
	if got := r.Score("u1"); got == 0 {
		t.Error("Score() right after draw = 0, want painted cells")
	}

	p, ok := r.Player("u1")
	if !ok {
		t.Fatal("Player() missing after draw")
	}
	if p.X == nil || *p.X != 50 {
		t.Error("Player() position not updated by draw")
	}
}

func TestRoom_TickEmitsScoresThenEnd(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.Join(testUser("u2"))
	if _, _, err := r.StartGame("u1"); err != nil {
		t.Fatalf("StartGame() unexpected error: %v", err)
	}
	r.ApplyDraw("u1", "s1", protocol.DrawData{X: 50, Y: 50, Color: "rgb(255,0,0)", Size: 4}, nil)

	// Mid-game tick: a score update, no game end.
	msgs := r.Tick(time.Now())
	if len(msgs) != 1 {
		t.Fatalf("Tick() mid-game returned %d messages, want 1", len(msgs))
	}
	if _, ok := msgs[0].(protocol.ScoreUpdate); !ok {
		t.Fatalf("Tick() mid-game message = %T, want ScoreUpdate", msgs[0])
	}

	// Past the time limit: exactly one game-ended, then silence.
	after := time.Now().Add(2 * time.Minute)
	msgs = r.Tick(after)
	if len(msgs) != 1 {
		t.Fatalf("Tick() past limit returned %d messages, want 1", len(msgs))
	}
	ended, ok := msgs[0].(protocol.GameEnded)
	if !ok {
		t.Fatalf("Tick() past limit message = %T, want GameEnded", msgs[0])
	}
	if ended.Winner.UserID != "u1" {
		t.Errorf("GameEnded winner = %q, want %q", ended.Winner.UserID, "u1")
	}

	if msgs = r.Tick(after.Add(time.Second)); msgs != nil {
		t.Errorf("Tick() after finish returned %d messages, want none", len(msgs))
	}
	if r.Phase() != game.PhaseFinished {
		t.Errorf("Phase() = %v, want finished", r.Phase())
	}
}

func TestRoom_OwnerDisconnectTransfersOwnership(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.Join(testUser("u2"))

	msgs := r.MarkDisconnected("u1")
	if len(msgs) != 1 {
		t.Fatalf("MarkDisconnected() returned %d messages, want 1", len(msgs))
	}
	changed, ok := msgs[0].(protocol.OwnerChanged)
	if !ok {
		t.Fatalf("MarkDisconnected() message = %T, want OwnerChanged", msgs[0])
	}
	if changed.NewOwnerID != "u2" {
		t.Errorf("OwnerChanged.NewOwnerID = %q, want %q", changed.NewOwnerID, "u2")
	}
	if r.OwnerID() != "u2" {
		t.Errorf("OwnerID() = %q, want %q", r.OwnerID(), "u2")
	}
}

func TestRoom_AllButOneDisconnectEndsGame(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.Join(testUser("u2"))
	if _, _, err := r.StartGame("u1"); err != nil {
		t.Fatalf("StartGame() unexpected error: %v", err)
	}

	msgs := r.MarkDisconnected("u2")
	var sawEnd bool
	for _, msg := range msgs {
		if _, ok := msg.(protocol.GameEnded); ok {
			sawEnd = true
		}
	}
	if !sawEnd {
		t.Error("MarkDisconnected() of second-to-last player did not end the game")
	}
	if r.Phase() != game.PhaseFinished {
		t.Errorf("Phase() = %v, want finished", r.Phase())
	}
}

func TestRoom_GraceWindowPreservesIdentity(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.Join(testUser("u2"))
	r.ApplyDraw("u2", "s1", protocol.DrawData{X: 30, Y: 30, Color: "rgb(0,0,255)", Size: 3}, nil)

	r.MarkDisconnected("u2")

	p, ok := r.Player("u2")
	if !ok {
		t.Fatal("Player() removed before grace window expired")
	}
	if p.IsConnected {
		t.Error("Player() still marked connected")
	}

	// Reconnect inside the window: undo history is still theirs.
	if _, err := r.Join(testUser("u2")); err != nil {
		t.Fatalf("Join() rejoin error: %v", err)
	}
	if got, _ := r.Undo("u2"); got != "s1" {
		t.Errorf("Undo() after rejoin = %q, want %q", got, "s1")
	}

	// Once expired without reconnect, the player is gone.
	r.MarkDisconnected("u2")
	if !r.RemoveExpired("u2") {
		t.Fatal("RemoveExpired() did not remove disconnected player")
	}
	if _, ok := r.Player("u2"); ok {
		t.Error("Player() still present after expiry")
	}
}

func TestRoom_RemoveExpiredSkipsReconnected(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.MarkDisconnected("u1")
	r.Join(testUser("u1"))

	if r.RemoveExpired("u1") {
		t.Error("RemoveExpired() removed a reconnected player")
	}
}

func TestRoom_ClosedRoomRejectsMutations(t *testing.T) {
	r := testRoom(t, 4)
	r.Join(testUser("u1"))
	r.Close()

	if id, _ := r.ApplyDraw("u1", "s1", protocol.DrawData{X: 1, Y: 1, Color: "c", Size: 1}, nil); id != "" {
		t.Error("ApplyDraw() succeeded on a closed room")
	}
	if got, _ := r.Undo("u1"); got != "" {
		t.Error("Undo() succeeded on a closed room")
	}
	if _, err := r.Join(testUser("u2")); err != ErrRoomClosed {
		t.Errorf("Join() on closed room error = %v, want ErrRoomClosed", err)
	}
}
