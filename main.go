package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"main/internal/config"
	"main/internal/handlers"
	"main/internal/hub"
	"main/internal/middleware"
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/transport"
	"main/internal/user"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	connHub := hub.NewHub()
	rooms := room.NewManager(connHub, cfg.GraceWindow, cfg.MaxRooms)
	sessions := user.NewSessionManager()
	validator := protocol.NewValidator()
	limits := middleware.DefaultLimits()
	limits.MaxRooms = cfg.MaxRooms
	ipLimiter := middleware.NewIPRateLimit()

	if cfg.SnapshotDir != "" {
		restoreRooms(rooms, cfg.SnapshotDir)
	}

	router := handlers.NewMessageRouter(rooms, limits, validator, sessions)
	ws := transport.NewWSHandler(router, sessions, ipLimiter)
	api := transport.NewHTTPHandler(rooms, sessions, validator)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.HandleWebSocket)
	api.Register(mux)

	go rooms.Run(ctx)
	go cleanupSessions(ctx, sessions, ipLimiter, cfg.SessionIdle)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		if cfg.SnapshotDir != "" {
			saveRooms(rooms, cfg.SnapshotDir)
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Server started on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Error starting server: %v", err)
	}
}

// cleanupSessions: periodically expires idle user sessions and stale
// per-IP limiters
func cleanupSessions(ctx context.Context, sessions *user.SessionManager, ipLimiter *middleware.IPRateLimit, maxIdle time.Duration) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Cleanup(maxIdle)
			ipLimiter.Cleanup()
		}
	}
}

// restoreRooms: reloads every room snapshot found in dir at boot
func restoreRooms(rooms *room.Manager, dir string) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		log.Printf("Error scanning snapshot dir %s: %v", dir, err)
		return
	}
	for _, path := range paths {
		snap, err := room.LoadSnapshot(path)
		if err != nil {
			log.Printf("Error loading snapshot %s: %v", path, err)
			continue
		}
		if _, err := rooms.RestoreRoom(snap); err != nil {
			log.Printf("Error restoring room from %s: %v", path, err)
			continue
		}
		log.Printf("Restored room %s from snapshot", snap.RoomID)
	}
}

// saveRooms: snapshots every live room before shutdown
func saveRooms(rooms *room.Manager, dir string) {
	for _, info := range rooms.List() {
		r, exists := rooms.Get(info.ID)
		if !exists {
			continue
		}
		if err := room.SaveSnapshot(dir, r.Snapshot()); err != nil {
			log.Printf("Error saving snapshot for room %s: %v", r.ID, err)
		}
	}
}
