package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_StartRequiresTwoPlayers(t *testing.T) {
	s := NewState(time.Minute)
	now := time.Now()

	started, err := s.Start(1, now)
	assert.False(t, started)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, PhaseWaiting, s.Phase())

	started, err = s.Start(2, now)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, PhasePlaying, s.Phase())
	assert.Equal(t, now, s.StartTime())
}

func TestState_ReentrantTransitionsAreNoops(t *testing.T) {
	s := NewState(time.Minute)
	now := time.Now()

	_, err := s.Start(2, now)
	require.NoError(t, err)

	// Starting again while playing: no-op, not an error.
	started, err := s.Start(2, now.Add(time.Second))
	assert.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, now, s.StartTime())

	_, err = s.Finish(map[string]int{"p1": 3, "p2": 1}, now.Add(time.Minute))
	require.NoError(t, err)

	// Finishing again: no-op.
	finished, err := s.Finish(map[string]int{"p1": 0}, now.Add(2*time.Minute))
	assert.NoError(t, err)
	assert.False(t, finished)
	assert.Equal(t, "p1", s.WinnerID())
}

func TestState_CannotSkipPlaying(t *testing.T) {
	s := NewState(time.Minute)

	_, err := s.Finish(map[string]int{"p1": 1}, time.Now())
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, PhaseWaiting, s.Phase())
}

func TestState_FinishedIsTerminal(t *testing.T) {
	s := NewState(time.Minute)
	now := time.Now()

	_, err := s.Start(2, now)
	require.NoError(t, err)
	_, err = s.Finish(map[string]int{"p1": 5, "p2": 2}, now.Add(time.Minute))
	require.NoError(t, err)

	_, err = s.Start(2, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrGameFinished)

	// Explicit reset re-enters waiting.
	s.Reset()
	assert.Equal(t, PhaseWaiting, s.Phase())
	assert.Empty(t, s.WinnerID())

	started, err := s.Start(2, now.Add(3*time.Minute))
	require.NoError(t, err)
	assert.True(t, started)
}

func TestState_Expired(t *testing.T) {
	s := NewState(30 * time.Second)
	now := time.Now()

	assert.False(t, s.Expired(now), "waiting games never expire")

	_, err := s.Start(2, now)
	require.NoError(t, err)

	assert.False(t, s.Expired(now.Add(29*time.Second)))
	assert.True(t, s.Expired(now.Add(30*time.Second)))
}

func TestState_WinnerIsMaxScore(t *testing.T) {
	s := NewState(time.Minute)
	now := time.Now()

	_, err := s.Start(3, now)
	require.NoError(t, err)

	finished, err := s.Finish(map[string]int{"p1": 10, "p2": 40, "p3": 25}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, "p2", s.WinnerID())
	assert.Equal(t, PhaseFinished, s.Phase())
}

func TestState_TieGoesToEarliestAtMax(t *testing.T) {
	s := NewState(time.Minute)
	now := time.Now()

	_, err := s.Start(2, now)
	require.NoError(t, err)

	// p2 reaches 50 first; p1 catches up later. Final scores tie at 50.
	s.ObserveScores(map[string]int{"p1": 20, "p2": 50}, now.Add(10*time.Second))
	s.ObserveScores(map[string]int{"p1": 50, "p2": 50}, now.Add(40*time.Second))

	_, err = s.Finish(map[string]int{"p1": 50, "p2": 50}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "p2", s.WinnerID())
}
