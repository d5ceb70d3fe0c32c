package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Migrations switches from AutoMigrate to the SQL migration files.
	Migrations bool
	// SeedAdmin* create an initial admin account when both are set.
	SeedAdminEmail    string
	SeedAdminPassword string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "file:accounts.db")
	cfg.Env = getEnv("APP_ENV", "development")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			log.Fatal("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "devjwtsecret"
	}
	cfg.AccessTTL = getDuration("ACCESS_TOKEN_TTL", 15*time.Minute)
	cfg.RefreshTTL = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)

	cfg.Migrations = ParseBool("MIGRATIONS", false)
	cfg.SeedAdminEmail = getEnv("SEED_ADMIN_EMAIL", "")
	cfg.SeedAdminPassword = getEnv("SEED_ADMIN_PASSWORD", "")

	cfg.ReadTimeout = getDuration("READ_TIMEOUT", 10*time.Second)
	cfg.WriteTimeout = getDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.IdleTimeout = getDuration("IDLE_TIMEOUT", 60*time.Second)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
