package stroke

import (
	"fmt"
	"testing"
)

func TestStore_AppendAndGet(t *testing.T) {
	store := NewStore()

	seq := store.Append(newTestStroke("s1", "user1"))
	if seq != 1 {
		t.Fatalf("Append() seq = %d, want 1", seq)
	}

	got, ok := store.Get("s1")
	if !ok {
		t.Fatal("Get() stroke missing after append")
	}
	if got.AuthorID != "user1" {
		t.Errorf("Get() AuthorID = %q, want %q", got.AuthorID, "user1")
	}

	if _, ok := store.Get("nope"); ok {
		t.Error("Get() found a stroke that was never appended")
	}
}

func TestStore_RejectsDuplicateID(t *testing.T) {
	store := NewStore()

	store.Append(newTestStroke("s1", "user1"))
	if seq := store.Append(newTestStroke("s1", "user2")); seq != 0 {
		t.Errorf("Append() duplicate id seq = %d, want 0", seq)
	}
	if seq := store.Append(&Stroke{AuthorID: "user1"}); seq != 0 {
		t.Errorf("Append() empty id seq = %d, want 0", seq)
	}
}

func TestStore_SinceReplay(t *testing.T) {
	store := NewStore()
	for i := 1; i <= 4; i++ {
		store.Append(newTestStroke(fmt.Sprintf("s%d", i), "user1"))
	}

	tests := []struct {
		name     string
		sinceSeq uint64
		wantIDs  []string
	}{
		{name: "full history", sinceSeq: 0, wantIDs: []string{"s1", "s2", "s3", "s4"}},
		{name: "partial history", sinceSeq: 2, wantIDs: []string{"s3", "s4"}},
		{name: "up to date", sinceSeq: 4, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Since(tt.sinceSeq)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Since(%d) returned %d strokes, want %d", tt.sinceSeq, len(got), len(tt.wantIDs))
			}
			for i, st := range got {
				if st.ID != tt.wantIDs[i] {
					t.Errorf("Since(%d)[%d] = %q, want %q", tt.sinceSeq, i, st.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestStore_SinceSkipsInactive(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)

	ledger.Push(newTestStroke("s1", "user1"))
	ledger.Push(newTestStroke("s2", "user1"))
	ledger.Undo("user1") // s2 inactive

	got := store.Since(0)
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("Since(0) = %v, want just s1", got)
	}
}

func TestStore_DumpRestore(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)
	ledger.Push(newTestStroke("s1", "user1"))
	ledger.Push(newTestStroke("s2", "user2"))
	ledger.Undo("user2")

	restored := NewStore()
	restored.Restore(store.Dump())

	if restored.Seq() != store.Seq() {
		t.Errorf("restored Seq() = %d, want %d", restored.Seq(), store.Seq())
	}
	if restored.ActiveCount() != 1 {
		t.Errorf("restored ActiveCount() = %d, want 1", restored.ActiveCount())
	}
	if _, ok := restored.Get("s2"); !ok {
		t.Error("restored store lost the inactive stroke")
	}
}
