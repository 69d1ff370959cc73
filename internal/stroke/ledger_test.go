package stroke

import (
	"fmt"
	"testing"
	"time"
)

func newTestStroke(id, author string) *Stroke {
	return &Stroke{
		ID:        id,
		AuthorID:  author,
		Points:    []Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
		Color:     "#ff0000",
		Size:      4,
		CreatedAt: time.Now(),
	}
}

func TestLedger_UndoScopedPerIdentity(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	ledger.Push(newTestStroke("s1", "user1"))
	ledger.Push(newTestStroke("s2", "user2"))
	ledger.Push(newTestStroke("s3", "user1"))

	tests := []struct {
		name     string
		identity string
		want     string
	}{
		{name: "user1 undoes own latest", identity: "user1", want: "s3"},
		{name: "user1 undoes own earlier", identity: "user1", want: "s1"},
		{name: "user1 cannot touch user2's stroke", identity: "user1", want: ""},
		{name: "user2 undoes own stroke", identity: "user2", want: "s2"},
		{name: "user2 has nothing left", identity: "user2", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.Undo(tt.identity)
			if got != tt.want {
				t.Errorf("Undo(%q) = %q, want %q", tt.identity, got, tt.want)
			}
		})
	}
}

func TestLedger_UndoRedoRoundTrip(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	original := newTestStroke("s1", "user1")
	ledger.Push(original)

	undone := ledger.Undo("user1")
	if undone != "s1" {
		t.Fatalf("Undo() = %q, want %q", undone, "s1")
	}
	if store.ActiveCount() != 0 {
		t.Fatalf("ActiveCount() after undo = %d, want 0", store.ActiveCount())
	}

	redone := ledger.Redo("user1")
	if redone != "s1" {
		t.Fatalf("Redo() = %q, want %q", redone, "s1")
	}

	restored, ok := store.Get("s1")
	if !ok {
		t.Fatal("Get() after redo: stroke missing")
	}
	if restored.ID != original.ID || restored.Color != original.Color {
		t.Errorf("redo restored a different stroke: got %+v, want %+v", restored, original)
	}
	if len(restored.Points) != len(original.Points) {
		t.Errorf("redo restored %d points, want %d", len(restored.Points), len(original.Points))
	}
	if store.ActiveCount() != 1 {
		t.Errorf("ActiveCount() after redo = %d, want 1", store.ActiveCount())
	}
}

func TestLedger_RedoCrossIdentityIsNoop(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	ledger.Push(newTestStroke("s1", "user1"))
	ledger.Undo("user1")

	if got := ledger.Redo("user2"); got != "" {
		t.Errorf("Redo() as user2 = %q, want empty (user1 owns the undo)", got)
	}
	if got := ledger.Redo("user1"); got != "s1" {
		t.Errorf("Redo() as user1 = %q, want %q", got, "s1")
	}
}

func TestLedger_NewStrokeClearsRedo(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	ledger.Push(newTestStroke("s1", "user1"))
	ledger.Undo("user1")

	if depth := ledger.RedoDepth("user1"); depth != 1 {
		t.Fatalf("RedoDepth() = %d, want 1", depth)
	}

	// A fresh action invalidates the redo history.
	ledger.Push(newTestStroke("s2", "user1"))

	if depth := ledger.RedoDepth("user1"); depth != 0 {
		t.Errorf("RedoDepth() after new stroke = %d, want 0", depth)
	}
	if got := ledger.Redo("user1"); got != "" {
		t.Errorf("Redo() after new stroke = %q, want empty", got)
	}
}

func TestLedger_GuestWithNoStrokes(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	if got := ledger.Undo("guest-abc123"); got != "" {
		t.Errorf("Undo() with no prior stroke = %q, want empty", got)
	}
}

func TestLedger_GuestIsolation(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	// Two guest sessions each draw one stroke. Each may only undo its own.
	ledger.Push(newTestStroke("g1", "guest-a"))
	ledger.Push(newTestStroke("g2", "guest-b"))

	if got := ledger.Undo("guest-a"); got != "g1" {
		t.Errorf("Undo(guest-a) = %q, want %q", got, "g1")
	}
	if got := ledger.Undo("guest-a"); got != "" {
		t.Errorf("Undo(guest-a) second call = %q, want empty", got)
	}
	if got := ledger.Undo("guest-b"); got != "g2" {
		t.Errorf("Undo(guest-b) = %q, want %q", got, "g2")
	}
}

func TestStore_SequenceMonotonic(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	var last uint64
	for i := 0; i < 5; i++ {
		seq := ledger.Push(newTestStroke(fmt.Sprintf("s%d", i), "user1"))
		if seq <= last {
			t.Fatalf("Push() seq = %d, want > %d", seq, last)
		}
		last = seq
	}

	// Undo and redo both advance the sequence.
	before := store.Seq()
	ledger.Undo("user1")
	if store.Seq() <= before {
		t.Errorf("Seq() after undo = %d, want > %d", store.Seq(), before)
	}
	before = store.Seq()
	ledger.Redo("user1")
	if store.Seq() <= before {
		t.Errorf("Seq() after redo = %d, want > %d", store.Seq(), before)
	}
}
