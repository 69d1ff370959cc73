package game

import (
	"errors"
	"time"
)

type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	ErrNotEnoughPlayers = errors.New("need at least 2 connected players to start")
	ErrGameFinished     = errors.New("game already finished")
	ErrNotStarted       = errors.New("game has not started")
)

// MinPlayers: connected players required to start a game
const MinPlayers = 2

// scoreMark: best score seen for a player and when it was first reached.
// Drives the tie-break at the end of a game.
type scoreMark struct {
	score int
	at    time.Time
}

// State: lifecycle of one color-clash game. waiting → playing → finished,
// finished is terminal until an explicit Reset. Transitions into the
// current phase are no-ops; skipping a phase is an error.
// Not safe for concurrent use; the owning room serializes access.
type State struct {
	phase     Phase
	timeLimit time.Duration
	startTime time.Time
	endTime   time.Time
	winnerID  string
	marks     map[string]scoreMark
}

func NewState(timeLimit time.Duration) *State {
	return &State{
		phase:     PhaseWaiting,
		timeLimit: timeLimit,
		marks:     make(map[string]scoreMark),
	}
}

func (s *State) Phase() Phase             { return s.phase }
func (s *State) TimeLimit() time.Duration { return s.timeLimit }
func (s *State) StartTime() time.Time     { return s.startTime }
func (s *State) EndTime() time.Time       { return s.endTime }
func (s *State) WinnerID() string         { return s.winnerID }

// Start: moves waiting → playing. Requires at least MinPlayers connected
// players. Returns false without error when already playing (re-entrant
// no-op); starting a finished game is an error.
func (s *State) Start(connectedPlayers int, now time.Time) (bool, error) {
	switch s.phase {
	case PhasePlaying:
		return false, nil
	case PhaseFinished:
		return false, ErrGameFinished
	}

	if connectedPlayers < MinPlayers {
		return false, ErrNotEnoughPlayers
	}

	s.phase = PhasePlaying
	s.startTime = now
	s.endTime = time.Time{}
	s.winnerID = ""
	s.marks = make(map[string]scoreMark)
	return true, nil
}

// ObserveScores: records score highs while playing so the end-of-game
// tie-break can tell who reached the winning score first.
func (s *State) ObserveScores(scores map[string]int, now time.Time) {
	if s.phase != PhasePlaying {
		return
	}
	for id, score := range scores {
		mark, seen := s.marks[id]
		if !seen || score > mark.score {
			s.marks[id] = scoreMark{score: score, at: now}
		}
	}
}

// Expired: reports whether the playing phase has used up its time limit
func (s *State) Expired(now time.Time) bool {
	return s.phase == PhasePlaying && now.Sub(s.startTime) >= s.timeLimit
}

// Finish: moves playing → finished and computes the winner from the final
// scores. Ties go to whoever reached that score first. Returns false
// without error when already finished; finishing a waiting game is an
// error (the playing phase cannot be skipped).
func (s *State) Finish(scores map[string]int, now time.Time) (bool, error) {
	switch s.phase {
	case PhaseFinished:
		return false, nil
	case PhaseWaiting:
		return false, ErrNotStarted
	}

	s.ObserveScores(scores, now)

	best := -1
	var bestAt time.Time
	for id, score := range scores {
		mark := s.marks[id]
		switch {
		case score > best:
			best = score
			bestAt = mark.at
			s.winnerID = id
		case score == best && mark.at.Before(bestAt):
			bestAt = mark.at
			s.winnerID = id
		}
	}

	s.phase = PhaseFinished
	s.endTime = now
	return true, nil
}

// RestoreState: rebuilds a State from snapshot fields. Unknown phase
// strings fall back to waiting.
func RestoreState(phase string, timeLimit time.Duration, start, end time.Time, winner string) *State {
	s := NewState(timeLimit)
	switch phase {
	case PhasePlaying.String():
		s.phase = PhasePlaying
		s.startTime = start
	case PhaseFinished.String():
		s.phase = PhaseFinished
		s.startTime = start
		s.endTime = end
		s.winnerID = winner
	}
	return s
}

// Reset: explicitly re-enters waiting so the room can host a fresh game
func (s *State) Reset() {
	s.phase = PhaseWaiting
	s.startTime = time.Time{}
	s.endTime = time.Time{}
	s.winnerID = ""
	s.marks = make(map[string]scoreMark)
}
