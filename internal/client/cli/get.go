package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: passenger get <id>")
	}
	id := args[0]

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	cred, err := c.api.GetCredential(ctx, token, id)
	if err != nil {
		return err
	}

	// Revealing counts as a clipboard copy on the server.
	secret, err := c.api.RevealPassphrase(ctx, token, id)
	if err != nil {
		return err
	}

	c.io.Println("=== Credential Details ===")
	c.io.Println()
	c.io.Printf("Platform:   %s\n", cred.Platform)
	c.io.Printf("ID:         %s\n", cred.ID)
	c.io.Printf("Identity:   %s\n", cred.Identity)
	c.io.Printf("Passphrase: %s\n", secret.Passphrase)
	if cred.URL != "" {
		c.io.Printf("URL:        %s\n", cred.URL)
	}
	if cred.Note != "" {
		c.io.Printf("Note:       %s\n", cred.Note)
	}
	if len(cred.Tags) > 0 {
		c.io.Printf("Tags:      ")
		for _, tag := range cred.Tags {
			c.io.Printf(" %s", tag.Name)
		}
		c.io.Println()
	}
	c.io.Printf("Copied:     %d time(s)\n", cred.CopiedCount)
	c.io.Printf("Created:    %s\n", cred.CreatedAt.Format(time.RFC3339))
	c.io.Printf("Updated:    %s\n", cred.UpdatedAt.Format(time.RFC3339))

	return nil
}
