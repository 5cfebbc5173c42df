package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Client defines audio conversion and inspection behaviour.
type Client interface {
	TranscodeMP3(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithFFmpegBinary overrides the default ffmpeg binary name.
func WithFFmpegBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffmpeg = binary
		}
	}
}

// WithFFprobeBinary overrides the default ffprobe binary name.
func WithFFprobeBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffprobe = binary
		}
	}
}

// CLI wraps the ffmpeg and ffprobe command-line tools.
type CLI struct {
	ffmpeg  string
	ffprobe string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{ffmpeg: "ffmpeg", ffprobe: "ffprobe"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// TranscodeMP3 converts an audio file to constant-bitrate mono MP3.
func (c *CLI) TranscodeMP3(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if bitrateKbps <= 0 {
		return errors.New("bitrate must be positive")
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", inputPath,
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		"-ac", "1",
		outputPath,
	}
	cmd := commandContext(ctx, c.ffmpeg, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg transcode failed: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg transcode failed: %w", err)
	}
	return nil
}

// Duration reports the playing time of an audio file via ffprobe.
func (c *CLI) Duration(ctx context.Context, path string) (time.Duration, error) {
	if path == "" {
		return 0, errors.New("path required")
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	cmd := commandContext(ctx, c.ffprobe, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return 0, fmt.Errorf("ffprobe failed: %w: %s", err, detail)
		}
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	raw := strings.TrimSpace(stdout.String())
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %w", raw, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("ffprobe returned negative duration %q", raw)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

var _ Client = (*CLI)(nil)
