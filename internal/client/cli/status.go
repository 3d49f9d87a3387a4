package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Elagoht/passenger-reborn/internal/client/session"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Vault Status ===")
	c.io.Println()

	status, err := c.api.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}

	if status.Initialized {
		c.io.Println("Vault: initialized")
	} else {
		c.io.Println("Vault: not initialized")
		c.io.Println()
		c.io.Println("Run 'passenger init' to set it up.")
		return nil
	}

	sess, err := c.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.io.Println("Session: none")
			c.io.Println()
			c.io.Println("Run 'passenger login' to open a session.")
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	expiresAt := time.Unix(sess.ExpiresAt, 0)
	remaining := expiresAt.Sub(c.now())

	if sess.Expired(c.now()) {
		c.io.Println("Session: expired")
		c.io.Println()
		c.io.Println("Run 'passenger login' again.")
		return nil
	}

	c.io.Println("Session: active")
	c.io.Printf("Server: %s\n", sess.ServerURL)
	c.io.Printf("Expires: %s\n", expiresAt.Format(time.RFC3339))
	c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))

	return nil
}
