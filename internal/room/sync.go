package room

import (
	"fmt"
	"time"

	"main/internal/protocol"
	"main/internal/stroke"
)

// StrokeHistory: returns the active strokes appended after sinceSeq, in
// order. Sequence 0 replays the full history.
func (r *Room) StrokeHistory(sinceSeq uint64) []*stroke.Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Since(sinceSeq)
}

// Synchronizer: builds the state replay a new connection receives before
// it is subscribed to live broadcasts. The order is fixed: room info and
// player list first, then stroke history, then the current game state.
type Synchronizer struct{}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// replayFramesLocked: encodes the full room state for a joining
// connection. Strokes are replayed as draw-update frames, one per path
// point, so the client paints them exactly as it would live traffic.
// Callers hold the room lock, which is what guarantees the snapshot and
// the live stream never overlap or leave a gap.
func (s *Synchronizer) replayFramesLocked(r *Room, sinceSeq uint64) ([][]byte, error) {
	joined, err := protocol.Encode(protocol.NewRoomJoined(r.infoLocked(), r.playersLocked()))
	if err != nil {
		return nil, fmt.Errorf("marshal room-joined: %w", err)
	}

	frames := [][]byte{joined}
	for _, st := range r.store.Since(sinceSeq) {
		for _, pt := range st.Points {
			frame, err := protocol.Encode(protocol.NewDrawUpdate(protocol.DrawData{
				X:     int(pt.X),
				Y:     int(pt.Y),
				Color: st.Color,
				Size:  int(st.Size),
			}, st.AuthorID))
			if err != nil {
				return nil, fmt.Errorf("marshal draw-update: %w", err)
			}
			frames = append(frames, frame)
		}
	}

	state, err := protocol.Encode(protocol.NewGameState(r.gameStateLocked(), time.Now().UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("marshal game-state: %w", err)
	}
	return append(frames, state), nil
}
