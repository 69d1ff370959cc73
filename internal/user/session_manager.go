package user

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SessionManager manages user sessions across connects and disconnects
type SessionManager struct {
	sessions      map[string]*UserSession // userID -> session
	tokenToUserID map[string]string       // token -> userID
	mu            sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:      make(map[string]*UserSession),
		tokenToUserID: make(map[string]string),
	}
}

// GetOrCreate: gets an existing session or creates a new one
func (sm *SessionManager) GetOrCreate(userID, username string, guest bool) *UserSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[userID]
	if exists {
		session.LastSeen = time.Now()
		if username != "" {
			session.Username = username
		}
		return session
	}

	token := GenerateSessionToken()
	session = &UserSession{
		UserID:       userID,
		Username:     username,
		Guest:        guest,
		SessionToken: token,
		LastSeen:     time.Now(),
		RateLimiter:  rate.NewLimiter(30, 10), // 30 msg/sec, burst of 10
	}
	sm.sessions[userID] = session
	sm.tokenToUserID[token] = userID
	return session
}

// ValidateToken: validates a session token and returns the associated userID
func (sm *SessionManager) ValidateToken(token string) (string, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	userID, exists := sm.tokenToUserID[token]
	if !exists {
		return "", false
	}

	session, sessionExists := sm.sessions[userID]
	if !sessionExists {
		return "", false
	}

	session.LastSeen = time.Now()
	return userID, true
}

// Get: retrieves a session by userID
func (sm *SessionManager) Get(userID string) (*UserSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[userID]
	return session, exists
}

// UpdateLastSeen: updates last seen time for a user session
func (sm *SessionManager) UpdateLastSeen(userID string, lastSeen time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[userID]; exists {
		session.LastSeen = lastSeen
	}
}

// SetLastRoom: records the room a session last joined, for resumption
func (sm *SessionManager) SetLastRoom(userID, roomID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[userID]; exists {
		session.LastRoom = roomID
	}
}

// Cleanup: removes expired user sessions
func (sm *SessionManager) Cleanup(maxIdle time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for userID, session := range sm.sessions {
		if now.Sub(session.LastSeen) > maxIdle {
			delete(sm.tokenToUserID, session.SessionToken)
			delete(sm.sessions, userID)
		}
	}
}
