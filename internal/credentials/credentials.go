// Package credentials resolves the Audiobookshelf API token from an ordered
// list of providers. A provider that fails is skipped, so a broken secret
// manager degrades to "no token" instead of aborting the command.
package credentials

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/drallgood/abs-cli/internal/logger"
)

// Provider returns an API token. An empty token with a nil error means
// the provider has nothing to offer.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static returns a fixed token, typically the api_token config value
type Static string

// Token implements Provider
func (s Static) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Command runs an external secret manager and uses its trimmed stdout as the token
type Command struct {
	Args []string

	// run is swapped out in tests
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommand returns a provider running argv[0] with the remaining arguments
func NewCommand(argv ...string) *Command {
	return &Command{Args: argv}
}

// Token implements Provider
func (c *Command) Token(ctx context.Context) (string, error) {
	if c == nil || len(c.Args) == 0 {
		return "", nil
	}

	run := c.run
	if run == nil {
		run = runCommand
	}

	out, err := run(ctx, c.Args[0], c.Args[1:]...)
	if err != nil {
		return "", fmt.Errorf("secret command %q failed: %w", c.Args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Chain asks each provider in order and returns the first non-empty token
type Chain []Provider

// Token implements Provider. It never returns an error; provider failures are
// logged at debug level and the next provider is asked.
func (c Chain) Token(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx).With(map[string]interface{}{
		"component": "credentials",
	})

	for i, p := range c {
		if p == nil {
			continue
		}
		token, err := p.Token(ctx)
		if err != nil {
			log.Debug("Credential provider failed, trying next", map[string]interface{}{
				"provider": i,
				"error":    err.Error(),
			})
			continue
		}
		if token != "" {
			return token, nil
		}
	}

	log.Debug("No API token available, continuing unauthenticated")
	return "", nil
}
