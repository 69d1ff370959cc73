package stroke

// Record: one entry of the append-only stroke log. Seq is assigned on
// append; Active flips on undo/redo instead of deleting the stroke so
// redo can restore it without reconstruction.
type Record struct {
	Stroke *Stroke `json:"stroke"`
	Seq    uint64  `json:"seq"`
	Active bool    `json:"active"`
}

// Store: append-only ordered stroke log for a single room.
// Not safe for concurrent use; the owning room serializes access.
type Store struct {
	records []*Record
	byID    map[string]*Record
	seq     uint64
}

func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Record),
	}
}

// Append: adds a stroke to the log and returns its sequence number.
// Strokes with a duplicate id are rejected (returns 0).
func (s *Store) Append(st *Stroke) uint64 {
	if st.ID == "" {
		return 0
	}
	if _, exists := s.byID[st.ID]; exists {
		return 0
	}

	s.seq++
	rec := &Record{Stroke: st, Seq: s.seq, Active: true}
	s.records = append(s.records, rec)
	s.byID[st.ID] = rec
	return rec.Seq
}

// Get: retrieves a stroke by id
func (s *Store) Get(id string) (*Stroke, bool) {
	rec, exists := s.byID[id]
	if !exists {
		return nil, false
	}
	return rec.Stroke, true
}

// Since: returns active strokes appended after sinceSeq, in append order.
// Used to replay history to late-joining clients.
func (s *Store) Since(sinceSeq uint64) []*Stroke {
	strokes := make([]*Stroke, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Seq > sinceSeq && rec.Active {
			strokes = append(strokes, rec.Stroke)
		}
	}
	return strokes
}

// Seq: returns the current room sequence number. It increments on every
// append, undo and redo, so clients can detect out-of-order delivery on
// reconnect.
func (s *Store) Seq() uint64 {
	return s.seq
}

// ActiveCount: returns the number of active strokes
func (s *Store) ActiveCount() int {
	count := 0
	for _, rec := range s.records {
		if rec.Active {
			count++
		}
	}
	return count
}

// lastActiveBy: finds the most recent active stroke authored by identity
func (s *Store) lastActiveBy(identity string) *Record {
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if rec.Active && rec.Stroke.AuthorID == identity {
			return rec
		}
	}
	return nil
}

// setActive: flips a stroke's active flag and bumps the sequence number
func (s *Store) setActive(id string, active bool) bool {
	rec, exists := s.byID[id]
	if !exists || rec.Active == active {
		return false
	}
	rec.Active = active
	s.seq++
	return true
}

// Dump: returns the full log for snapshotting
func (s *Store) Dump() []*Record {
	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out
}

// Restore: replaces the log with a snapshot
func (s *Store) Restore(records []*Record) {
	s.records = make([]*Record, 0, len(records))
	s.byID = make(map[string]*Record, len(records))
	s.seq = 0
	for _, rec := range records {
		s.records = append(s.records, rec)
		s.byID[rec.Stroke.ID] = rec
		if rec.Seq > s.seq {
			s.seq = rec.Seq
		}
	}
}
