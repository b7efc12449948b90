package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionBackend selects where session keys are persisted
type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendRedis  SessionBackend = "redis"
	SessionBackendFile   SessionBackend = "file"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() SessionBackend {
	return SessionBackend(strings.ToLower(GetEnv("SESSION_BACKEND", string(SessionBackendMemory))))
}

func (Session) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}

func (Session) GetSessionTTL() time.Duration {
	return getDurationEnv("SESSION_TTL", 7*24*time.Hour) // 7 days
}

// GetSessionFile is where the file backend and the terminal client keep session keys
func (Session) GetSessionFile() string {
	if path := GetEnv("SESSION_FILE", ""); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".storefront", "session.json")
	}
	return filepath.Join(home, ".storefront", "session.json")
}

// GetViewTTL is how long an idle product listing stays mounted
func (Session) GetViewTTL() time.Duration {
	return getDurationEnv("VIEW_TTL", 30*time.Minute)
}
