package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Elagoht/passenger-reborn/internal/client/api"
	"github.com/Elagoht/passenger-reborn/internal/client/cli"
	"github.com/Elagoht/passenger-reborn/internal/client/iocli"
	"github.com/Elagoht/passenger-reborn/internal/client/session"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "passenger-client.db", "Path to local session database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, err := session.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close session database: %v\n", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)
	c := cli.New(iocli.NewStdio(), apiClient, sessions)

	c.Run(ctx, args[0], args[1:])
}

func printVersion() {
	fmt.Printf("Passenger Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
