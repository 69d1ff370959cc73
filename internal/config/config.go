package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment
type Config struct {
	Port        string
	Domains     string
	GraceWindow time.Duration
	MaxRooms    int
	SnapshotDir string
	SessionIdle time.Duration
}

// Load reads .env when present and falls back to defaults for anything
// unset. DOMAINS is consumed by the WebSocket origin check via the
// environment, so it is only echoed here for logging.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Domains:     getEnv("DOMAINS", ""),
		GraceWindow: getDuration("GRACE_WINDOW", 30*time.Second),
		MaxRooms:    getInt("MAX_ROOMS", 500),
		SnapshotDir: getEnv("SNAPSHOT_DIR", ""),
		SessionIdle: getDuration("SESSION_IDLE", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// getDuration accepts either a Go duration string ("30s") or a bare
// number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Invalid %s=%q, using %s", key, v, fallback)
	return fallback
}
