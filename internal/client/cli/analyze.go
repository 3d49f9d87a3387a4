package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runWordlists(ctx context.Context) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	wordlists, err := c.api.AvailableWordlists(ctx, token)
	if err != nil {
		return err
	}

	c.io.Println("=== Available Wordlists ===")
	c.io.Println()

	if len(wordlists) == 0 {
		c.io.Println("No validated wordlists available.")
		return nil
	}

	c.io.Printf("%-36s  %-25s  %-12s  %s\n", "ID", "NAME", "PASSWORDS", "LENGTHS")
	for _, wl := range wordlists {
		c.io.Printf("%-36s  %-25s  %-12d  %d-%d\n",
			wl.ID, truncate(wl.DisplayName, 25), wl.TotalPasswords, wl.MinLength, wl.MaxLength)
	}

	return nil
}

func (c *Cli) runAnalyze(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: passenger analyze <wordlist-id>")
	}
	wordlistID := args[0]

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	result, err := c.api.InitializeAnalysis(ctx, token, wordlistID)
	if err != nil {
		return err
	}

	c.io.Println("✓ Analysis started!")
	c.io.Printf("Analysis ID: %s\n", result.AnalysisID)
	c.io.Println()
	c.io.Printf("Run 'passenger observe %s' to follow its progress.\n", result.AnalysisID)

	return nil
}

func (c *Cli) runObserve(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: passenger observe <analysis-id>")
	}
	id := args[0]

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	snapshot, err := c.api.ObserveAnalysis(ctx, token, id)
	if err != nil {
		return err
	}

	c.io.Printf("=== Analysis %s ===\n", snapshot.ID)
	c.io.Println()
	if snapshot.IsActive {
		c.io.Println("State: running")
	} else {
		c.io.Println("State: finished")
	}
	c.io.Printf("Checked: %d  Matched: %d\n", snapshot.Progress.TotalChecked, snapshot.Progress.TotalMatched)
	c.io.Println()

	for _, line := range snapshot.Logs {
		c.io.Println(line)
	}

	return nil
}

func (c *Cli) runReport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: passenger report <analysis-id>")
	}
	id := args[0]

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	report, err := c.api.AnalysisReport(ctx, token, id)
	if err != nil {
		return err
	}

	c.io.Println("=== Analysis Report ===")
	c.io.Println()
	c.io.Printf("ID:       %s\n", report.ID)
	c.io.Printf("Status:   %s\n", report.Status)
	c.io.Printf("Started:  %s\n", report.CreatedAt.Format(time.RFC3339))
	c.io.Printf("Checked:  %d\n", report.TotalChecked)
	c.io.Printf("Matched:  %d\n", report.TotalMatched)
	c.io.Printf("Took:     %s\n", time.Duration(report.TookMs)*time.Millisecond)
	if report.Message != "" {
		c.io.Printf("Message:  %s\n", report.Message)
	}
	c.io.Println()

	if len(report.MatchedCredentials) == 0 {
		c.io.Println("No vulnerable credentials found.")
		return nil
	}

	c.io.Println("Vulnerable credentials (secret found in the wordlist):")
	for _, cred := range report.MatchedCredentials {
		c.io.Printf("  %-36s  %-20s  %s\n", cred.ID, truncate(cred.Platform, 20), cred.Identity)
	}
	c.io.Println()
	c.io.Println("Rotate these passphrases as soon as possible.")

	return nil
}

func (c *Cli) runStop(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: passenger stop <analysis-id>")
	}
	id := args[0]

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	if err := c.api.StopAnalysis(ctx, token, id); err != nil {
		return err
	}

	c.io.Println("✓ Analysis stopped.")

	return nil
}
