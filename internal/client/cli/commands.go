package cli

import (
	"context"
	"fmt"
	"os"
)

func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "init":
		err = c.runInit(ctx)
	case "login":
		err = c.runLogin(ctx)
	case "logout":
		err = c.runLogout(ctx)
	case "status":
		err = c.runStatus(ctx)
	case "list":
		err = c.runList(ctx)
	case "get":
		err = c.runGet(ctx, args)
	case "stats":
		err = c.runStats(ctx)
	case "generate":
		err = c.runGenerate(ctx, args)
	case "alternative":
		err = c.runAlternative(ctx, args)
	case "wordlists":
		err = c.runWordlists(ctx)
	case "analyze":
		err = c.runAnalyze(ctx, args)
	case "observe":
		err = c.runObserve(ctx, args)
	case "report":
		err = c.runReport(ctx, args)
	case "stop":
		err = c.runStop(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
