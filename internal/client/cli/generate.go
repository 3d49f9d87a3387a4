package cli

import (
	"context"
	"fmt"
	"strconv"
)

const defaultGenerateLength = 32

func (c *Cli) runGenerate(ctx context.Context, args []string) error {
	length := defaultGenerateLength
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("usage: passenger generate [length]")
		}
		length = parsed
	}

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	generated, err := c.api.GeneratePassphrase(ctx, token, length)
	if err != nil {
		return err
	}

	c.io.Println(generated.Passphrase)
	return nil
}

func (c *Cli) runAlternative(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: passenger alternative <passphrase>")
	}

	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	generated, err := c.api.GenerateAlternative(ctx, token, args[0])
	if err != nil {
		return err
	}

	c.io.Println(generated.Passphrase)
	return nil
}
