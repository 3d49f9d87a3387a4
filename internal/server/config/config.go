// Package config loads server configuration from flags and environment.
// Secrets come from the environment only; they never appear in argv.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config is the runtime configuration of the vault server.
type Config struct {
	ListenAddr    string
	DBPath        string
	WordlistDir   string
	EncryptionKey string // AES key material, env ENCRYPTION_KEY
	JWTSecret     string // session token signing key, env JWT_SECRET
	TokenTTL      time.Duration
}

const (
	defaultListenAddr  = ":8080"
	defaultDBPath      = "passenger.db"
	defaultWordlistDir = "wordlists"
	defaultTokenTTL    = 24 * time.Hour
)

// Load parses args (without the program name) over environment defaults.
// Flags win over environment variables.
func Load(args []string) (*Config, error) {
	cfg := &Config{
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	fs := flag.NewFlagSet("passenger-server", flag.ContinueOnError)
	fs.StringVar(&cfg.ListenAddr, "addr", envOr("LISTEN_ADDR", defaultListenAddr), "listen address")
	fs.StringVar(&cfg.DBPath, "db", envOr("DB_PATH", defaultDBPath), "path to the SQLite database")
	fs.StringVar(&cfg.WordlistDir, "wordlists", envOr("WORDLIST_DIR", defaultWordlistDir), "wordlist data directory")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", envDurationOr("TOKEN_TTL", defaultTokenTTL), "session token lifetime")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
