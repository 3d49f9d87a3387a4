package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runList(ctx context.Context) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	credentials, err := c.api.ListCredentials(ctx, token)
	if err != nil {
		return err
	}

	c.io.Println("=== Stored Credentials ===")
	c.io.Println()

	if len(credentials) == 0 {
		c.io.Println("No credentials found.")
		return nil
	}

	c.io.Printf("%-36s  %-20s  %-25s  %s\n", "ID", "PLATFORM", "IDENTITY", "COPIED")
	for _, cred := range credentials {
		c.io.Printf("%-36s  %-20s  %-25s  %d\n",
			cred.ID, truncate(cred.Platform, 20), truncate(cred.Identity, 25), cred.CopiedCount)
	}

	c.io.Println()
	c.io.Printf("%d credential(s)\n", len(credentials))

	return nil
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return fmt.Sprintf("%s...", string(runes[:max-3]))
}
