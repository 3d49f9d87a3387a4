package cli

import (
	"context"
)

func (c *Cli) runStats(ctx context.Context) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	count, err := c.api.Count(ctx, token)
	if err != nil {
		return err
	}

	graph, err := c.api.StrengthGraph(ctx, token)
	if err != nil {
		return err
	}

	c.io.Println("=== Vault Strength ===")
	c.io.Println()
	c.io.Printf("Credentials: %d\n", count.Count)

	if len(graph) == 0 {
		c.io.Println()
		c.io.Println("No strength history yet.")
		return nil
	}

	c.io.Printf("Current average strength: %d/100\n", graph[len(graph)-1].Strength)
	c.io.Println()

	for _, point := range graph {
		c.io.Printf("%s  %3d  %s\n", point.Date, point.Strength, strengthBar(point.Strength))
	}

	return nil
}

// strengthBar renders a 0-100 score as a 20-cell bar.
func strengthBar(strength int) string {
	if strength < 0 {
		strength = 0
	}
	if strength > 100 {
		strength = 100
	}
	filled := strength / 5
	bar := make([]byte, 20)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = '.'
		}
	}
	return string(bar)
}
