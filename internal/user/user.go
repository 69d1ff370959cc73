package user

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// UserSession persists across disconnects so a reconnecting client keeps
// its identity, and with it its undo/redo history and score.
type UserSession struct {
	UserID       string
	Username     string
	Guest        bool
	SessionToken string
	LastRoom     string
	LastSeen     time.Time
	RateLimiter  *rate.Limiter
}

// User represents a connected user
type User struct {
	ID       string
	Username string
	Session  *UserSession
}

// NewGuestID: generates a synthetic identity for an unauthenticated
// session. Undo/redo and scoring are scoped to it, so one guest can
// never act on another guest's strokes.
func NewGuestID() string {
	return "guest-" + uuid.NewString()
}

// GenerateSessionToken: generates an opaque reconnection token
func GenerateSessionToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(bytes)
}
