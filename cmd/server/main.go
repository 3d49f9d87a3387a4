package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/server"
	"github.com/Elagoht/passenger-reborn/internal/server/config"
	"github.com/Elagoht/passenger-reborn/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		printVersion()
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	secret, err := encryptionSecret(cfg)
	if err != nil {
		return err
	}
	key, err := crypto.DeriveKey(secret)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	srv := server.New(cfg, logger, store, key, Version)
	return srv.Run(ctx)
}

// encryptionSecret returns the cipher secret from the environment, falling
// back to an interactive prompt when running on a terminal. The vault
// cannot start without it: every stored secret is encrypted under this key.
func encryptionSecret(cfg *config.Config) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("ENCRYPTION_KEY environment variable is required")
	}

	fmt.Fprint(os.Stderr, "Encryption key: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read encryption key: %w", err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("encryption key must not be empty")
	}

	return string(secret), nil
}

func printVersion() {
	fmt.Printf("Passenger Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
