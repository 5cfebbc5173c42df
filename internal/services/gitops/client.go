package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines repository publishing behaviour.
type Client interface {
	Publish(ctx context.Context, repoDir, message, remote, branch string) error
	HasChanges(ctx context.Context, repoDir string) (bool, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default git binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the git command-line tool for publishing rendered content.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "git"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// HasChanges reports whether the working tree has uncommitted changes.
func (c *CLI) HasChanges(ctx context.Context, repoDir string) (bool, error) {
	if repoDir == "" {
		return false, errors.New("repository directory required")
	}
	out, err := c.run(ctx, repoDir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Publish stages everything in repoDir, commits with the given message, and
// pushes to remote/branch. A clean tree is a no-op. A push rejection is
// returned as-is; the caller decides whether that is fatal.
func (c *CLI) Publish(ctx context.Context, repoDir, message, remote, branch string) error {
	if repoDir == "" {
		return errors.New("repository directory required")
	}
	if strings.TrimSpace(message) == "" {
		return errors.New("commit message required")
	}

	if _, err := c.run(ctx, repoDir, "add", "-A"); err != nil {
		return err
	}

	dirty, err := c.HasChanges(ctx, repoDir)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	if _, err := c.run(ctx, repoDir, "commit", "-m", message); err != nil {
		return err
	}

	pushArgs := []string{"push"}
	if remote != "" {
		pushArgs = append(pushArgs, remote)
		if branch != "" {
			pushArgs = append(pushArgs, branch)
		}
	}
	if _, err := c.run(ctx, repoDir, pushArgs...); err != nil {
		return err
	}
	return nil
}

func (c *CLI) run(ctx context.Context, repoDir string, args ...string) (string, error) {
	full := append([]string{"-C", repoDir}, args...)
	cmd := commandContext(ctx, c.binary, full...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("git %s failed: %w: %s", args[0], err, detail)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return stdout.String(), nil
}

var _ Client = (*CLI)(nil)
