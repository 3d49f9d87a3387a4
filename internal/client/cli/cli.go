// Package cli implements the vault client commands. Every authenticated
// command asks for the master passphrase (or reads it from the
// environment) to unlock the locally stored session token.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Elagoht/passenger-reborn/internal/client/api"
	"github.com/Elagoht/passenger-reborn/internal/client/iocli"
	"github.com/Elagoht/passenger-reborn/internal/client/session"
)

// masterPassphraseEnv lets scripts skip the interactive prompt.
const masterPassphraseEnv = "PASSENGER_MASTER_PASSPHRASE"

type Cli struct {
	io       iocli.IO
	api      *api.Client
	sessions *session.Store

	now func() time.Time
}

func New(io iocli.IO, apiClient *api.Client, sessions *session.Store) *Cli {
	return &Cli{
		io:       io,
		api:      apiClient,
		sessions: sessions,
		now:      time.Now,
	}
}

// masterPassphrase reads the master passphrase from the environment or,
// failing that, from an interactive prompt.
func (c *Cli) masterPassphrase() (string, error) {
	if env := os.Getenv(masterPassphraseEnv); env != "" {
		return env, nil
	}

	passphrase, err := c.io.ReadPassword("Master passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	return passphrase, nil
}

// sessionToken unlocks the stored session token with the master
// passphrase. A wrong passphrase fails the decryption rather than
// producing a bad token.
func (c *Cli) sessionToken(ctx context.Context) (string, error) {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return "", fmt.Errorf("not logged in, run 'passenger login' first")
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	if sess.Expired(c.now()) {
		return "", fmt.Errorf("session expired, run 'passenger login' again")
	}

	passphrase, err := c.masterPassphrase()
	if err != nil {
		return "", err
	}

	token, err := sess.Unseal(passphrase)
	if err != nil {
		return "", fmt.Errorf("could not unlock session, check your passphrase: %w", err)
	}
	return token, nil
}

func PrintUsage() {
	fmt.Println("Passenger Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  passenger [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version      Show version information")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to local session database (default: passenger-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init                  Initialize a fresh vault")
	fmt.Println("  login                 Login and save an encrypted session")
	fmt.Println("  logout                Delete the local session")
	fmt.Println("  status                Show vault and session status")
	fmt.Println("  list                  List stored credentials")
	fmt.Println("  get <id>              Show one credential with its passphrase")
	fmt.Println("  stats                 Show the vault strength graph and counters")
	fmt.Println("  generate [length]     Generate a random passphrase (default length 32)")
	fmt.Println("  alternative <input>   Generate a look-alike variant of a passphrase")
	fmt.Println("  wordlists             List wordlists ready for analysis")
	fmt.Println("  analyze <wordlist>    Start a brute-force analysis run")
	fmt.Println("  observe <analysis>    Show a snapshot of a running analysis")
	fmt.Println("  report <analysis>     Show the report of a finished analysis")
	fmt.Println("  stop <analysis>       Stop a running analysis")
	fmt.Println()
	fmt.Println("The master passphrase is read from the " + masterPassphraseEnv)
	fmt.Println("environment variable when set, otherwise prompted for.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  passenger init")
	fmt.Println("  passenger login")
	fmt.Println("  passenger list")
	fmt.Println("  passenger get b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5")
	fmt.Println("  passenger analyze rockyou-2021")
	fmt.Println("  passenger --server https://vault.example.com status")
}
