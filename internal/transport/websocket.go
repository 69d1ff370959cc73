package transport

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"main/internal/handlers"
	"main/internal/hub"
	"main/internal/middleware"
	"main/internal/user"
)

const authTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	// CORS
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("origin")

		allowedDomains := strings.Split(os.Getenv("DOMAINS"), ",")

		for _, allowed := range allowedDomains {
			if origin == strings.TrimSpace(allowed) {
				return true
			}
		}

		return false
	},
}

// GetClientIP extracts the real client IP from the request
func GetClientIP(r *http.Request) string {
	// X-Forwarded-For
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// X-Real-IP
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx] // Remove port
	}
	return ip
}

// Authenticator: handles WebSocket authentication
type Authenticator struct {
	sessionMgr *user.SessionManager
}

func NewAuthenticator(sessionMgr *user.SessionManager) *Authenticator {
	return &Authenticator{
		sessionMgr: sessionMgr,
	}
}

// AuthResult contains the results of authentication
type AuthResult struct {
	UserID    string
	Username  string
	IsNewUser bool
}

// Authenticate: reads and validates the authentication message from a
// new connection. Returning users present their session token and keep
// their identity; everyone else gets a fresh guest id and token.
func (a *Authenticator) Authenticate(conn *websocket.Conn, timeout time.Duration) (*AuthResult, error) {
	// Read deadline
	conn.SetReadDeadline(time.Now().Add(timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to receive auth message: %w", err)
	}
	conn.SetReadDeadline(time.Time{}) // Clear timeout

	var authMsg struct {
		Type     string `json:"type"`
		Token    string `json:"token"` // Session token for returning users
		Username string `json:"username"`
	}

	if err := json.Unmarshal(msg, &authMsg); err != nil {
		return nil, fmt.Errorf("invalid auth message format: %w", err)
	}

	if authMsg.Type != "authenticate" {
		return nil, fmt.Errorf("expected authenticate message, got: %s", authMsg.Type)
	}

	// Case 1: Returning user with valid token
	if authMsg.Token != "" {
		userID, valid := a.sessionMgr.ValidateToken(authMsg.Token)
		if valid {
			log.Printf("Returning user authenticated: %s", userID)
			return &AuthResult{
				UserID:    userID,
				Username:  authMsg.Username,
				IsNewUser: false,
			}, nil
		}
		log.Printf("Invalid or expired token provided, treating as new user")
	}

	// Case 2: New user (empty token or invalid token). The session
	// manager mints their reconnection token when the session is created.
	userID := user.NewGuestID()

	log.Printf("New user created: %s", userID)
	return &AuthResult{
		UserID:    userID,
		Username:  authMsg.Username,
		IsNewUser: true,
	}, nil
}

// WSHandler: accepts WebSocket connections and pumps their messages
// through the router
type WSHandler struct {
	router    *handlers.MessageRouter
	sessions  *user.SessionManager
	auth      *Authenticator
	ipLimiter *middleware.IPRateLimit
}

func NewWSHandler(router *handlers.MessageRouter, sessions *user.SessionManager, ipLimiter *middleware.IPRateLimit) *WSHandler {
	return &WSHandler{
		router:    router,
		sessions:  sessions,
		auth:      NewAuthenticator(sessions),
		ipLimiter: ipLimiter,
	}
}

// HandleWebSocket upgrades HTTP to WebSocket, authenticates the client
// and runs its message loop until the connection dies
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Check if rate limited
	clientIP := GetClientIP(r)
	if !h.ipLimiter.Allow(clientIP) {
		log.Printf("Rate limit exceeded for IP: %s", clientIP)
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	// Upgrade connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Error upgrading connection -", err)
		return
	}
	defer conn.Close()

	auth, err := h.auth.Authenticate(conn, authTimeout)
	if err != nil {
		log.Println("Error: Authentication failed:", err)
		return
	}

	username := auth.Username
	if username == "" {
		username = "guest"
	}
	session := h.sessions.GetOrCreate(auth.UserID, username, auth.IsNewUser)

	// Send identity back to client (for new users or confirmation)
	response := map[string]interface{}{
		"type":   "authenticated",
		"userId": auth.UserID,
		"token":  session.SessionToken,
	}
	responseMsg, _ := json.Marshal(response)
	conn.WriteMessage(websocket.TextMessage, responseMsg)

	u := &user.User{
		ID:       auth.UserID,
		Username: username,
		Session:  session,
	}
	client := &handlers.Client{
		Conn: hub.NewConn(conn, hub.DefaultQueueSize),
		User: u,
	}

	h.run(conn, client)
}

// run handles the message loop for WebSocket connections
func (h *WSHandler) run(conn *websocket.Conn, client *handlers.Client) {
	defer func() {
		h.router.Disconnect(client)
		client.Conn.Close()
		h.sessions.UpdateLastSeen(client.User.ID, time.Now())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Println("Error: Reading message", err)
			}
			return // Connection dead
		}

		if err := h.router.Route(client, msg); err != nil {
			log.Printf("Error handling message from user %s: %v", client.User.ID, err)
			continue // Skip message
		}
	}
}
