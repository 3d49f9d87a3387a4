package cli

import (
	"context"
	"fmt"

	"github.com/Elagoht/passenger-reborn/internal/client/session"
	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/validation"
	"github.com/Elagoht/passenger-reborn/pkg/api"
)

func (c *Cli) runInit(ctx context.Context) error {
	c.io.Println("=== Initialize Vault ===")
	c.io.Println()

	status, err := c.api.Status(ctx)
	if err != nil {
		return err
	}
	if status.Initialized {
		c.io.Println("The vault is already initialized.")
		c.io.Println("Run 'passenger login' to open it.")
		return nil
	}

	passphrase, err := c.io.ReadPassword("Master passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	repeat, err := c.io.ReadPassword("Repeat master passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if passphrase != repeat {
		return fmt.Errorf("passphrases do not match")
	}
	if err := validation.ValidatePassphrase(passphrase); err != nil {
		return err
	}

	recoveryKey, err := crypto.GeneratePassphrase()
	if err != nil {
		return fmt.Errorf("failed to generate recovery key: %w", err)
	}

	err = c.api.Initialize(ctx, api.InitializeRequest{
		Passphrase:  passphrase,
		RecoveryKey: recoveryKey,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Vault initialized!")
	c.io.Println()
	c.io.Printf("Recovery key: %s\n", recoveryKey)
	c.io.Println()
	c.io.Println("Write the recovery key down and keep it offline. It is shown")
	c.io.Println("only once and is the only way to reset a forgotten passphrase.")

	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	passphrase, err := c.masterPassphrase()
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	result, err := c.api.Login(ctx, api.LoginRequest{Passphrase: passphrase})
	if err != nil {
		return err
	}

	sess := &session.Session{
		ServerURL: c.api.BaseURL(),
		ExpiresAt: c.now().Unix() + result.ExpiresIn,
	}
	if err := sess.Seal(result.AccessToken, passphrase); err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}

	if err := c.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Session expires in: %d seconds\n", result.ExpiresIn)
	c.io.Println("The session token is stored encrypted under your passphrase.")

	return nil
}
