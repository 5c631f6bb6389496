// Package config provides centralized configuration management.
// Defaults live here; environment variables override them at load time.
package config

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig holds HTTP/websocket server settings.
type ServerConfig struct {
	Port          int
	MaxConns      int // total websocket connections
	MaxConnsPerIP int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:          3000,
		MaxConns:      500,
		MaxConnsPerIP: 10,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if n := getEnvInt("MAX_CONNECTIONS", 0); n > 0 {
		cfg.MaxConns = n
	}
	if n := getEnvInt("MAX_CONNECTIONS_PER_IP", 0); n > 0 {
		cfg.MaxConnsPerIP = n
	}
	return cfg
}

// MatchConfig holds per-room simulation settings.
type MatchConfig struct {
	TickRate     int           // simulation ticks per second
	Duration     time.Duration // match clock
	MaxPlayers   int           // per-room capacity
	DestroyOnEnd bool          // tear rooms down on match end instead of keeping an end screen
	EventLogPath string        // JSONL match event log; empty disables
}

// DefaultMatch returns the default match configuration: 60 TPS, 3 minute
// matches, rooms kept addressable after the final whistle.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		TickRate:     60,
		Duration:     3 * time.Minute,
		MaxPlayers:   12,
		DestroyOnEnd: false,
		EventLogPath: "matches.jsonl",
	}
}

// MatchFromEnv returns match configuration with environment overrides.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()
	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if secs := getEnvInt("MATCH_DURATION_SECONDS", 0); secs > 0 {
		cfg.Duration = time.Duration(secs) * time.Second
	}
	if mp := getEnvInt("MAX_PLAYERS_PER_ROOM", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}
	if os.Getenv("MATCH_DESTROY_ON_END") == "true" {
		cfg.DestroyOnEnd = true
	}
	if p, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = p
	}
	return cfg
}

// FieldConfig holds pitch dimensions in pixels.
type FieldConfig struct {
	Width     float64
	Height    float64
	GoalMouth float64
}

// DefaultField returns the canonical 1000x600 pitch with a 150px goal mouth.
func DefaultField() FieldConfig {
	return FieldConfig{Width: 1000, Height: 600, GoalMouth: 150}
}

// FieldFromEnv returns field configuration with environment overrides.
func FieldFromEnv() FieldConfig {
	cfg := DefaultField()
	if w := getEnvFloat("FIELD_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("FIELD_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if g := getEnvFloat("GOAL_MOUTH_HEIGHT", 0); g > 0 {
		cfg.GoalMouth = g
	}
	return cfg
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server ServerConfig
	Match  MatchConfig
	Field  FieldConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server: ServerFromEnv(),
		Match:  MatchFromEnv(),
		Field:  FieldFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
