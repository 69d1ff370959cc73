package stroke

// Ledger: per-identity undo/redo stacks layered on a Store. Identity is
// either an authenticated user id or the synthetic id of a guest session;
// either way, undo and redo never cross identities.
// Not safe for concurrent use; the owning room serializes access.
type Ledger struct {
	store *Store
	redo  map[string][]string // identity → stack of undone stroke ids
}

func NewLedger(store *Store) *Ledger {
	return &Ledger{
		store: store,
		redo:  make(map[string][]string),
	}
}

// Push: appends a stroke and invalidates the author's redo history
// (standard editor semantics: a new action clears the redo stack).
// Returns the assigned sequence number, or 0 for a duplicate id.
func (l *Ledger) Push(st *Stroke) uint64 {
	seq := l.store.Append(st)
	if seq == 0 {
		return 0
	}
	delete(l.redo, st.AuthorID)
	return seq
}

// Undo: marks the identity's most recent active stroke inactive and
// returns its id. Returns "" when the identity has nothing to undo —
// including when the only remaining strokes belong to someone else.
func (l *Ledger) Undo(identity string) string {
	rec := l.store.lastActiveBy(identity)
	if rec == nil {
		return ""
	}

	l.store.setActive(rec.Stroke.ID, false)
	l.redo[identity] = append(l.redo[identity], rec.Stroke.ID)
	return rec.Stroke.ID
}

// Redo: re-activates the identity's most recently undone stroke and
// returns its id, or "" when the redo stack is empty.
func (l *Ledger) Redo(identity string) string {
	stack := l.redo[identity]
	if len(stack) == 0 {
		return ""
	}

	id := stack[len(stack)-1]
	l.redo[identity] = stack[:len(stack)-1]

	if !l.store.setActive(id, true) {
		return ""
	}
	return id
}

// RedoDepth: returns how many strokes the identity can redo
func (l *Ledger) RedoDepth(identity string) int {
	return len(l.redo[identity])
}
