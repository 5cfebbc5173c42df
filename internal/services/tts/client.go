package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines speech synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithVoice selects the voice model passed to the binary.
func WithVoice(voice string) Option {
	return func(c *CLI) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// CLI wraps a piper-style text-to-speech binary that reads text on stdin and
// writes a WAV file.
type CLI struct {
	binary string
	voice  string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "piper"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Synthesize renders text to a WAV file at outputPath.
func (c *CLI) Synthesize(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{"--output_file", outputPath}
	if c.voice != "" {
		args = append(args, "--model", c.voice)
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("speech synthesis failed: %w: %s", err, detail)
		}
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
