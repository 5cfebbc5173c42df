package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkcast/internal/chunker"
	"inkcast/internal/logging"
	"inkcast/internal/services"
	"inkcast/internal/services/llm"
)

// Completer is the translation endpoint contract.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// A response this much shorter than a long input is treated as a truncated
// connection failure rather than a translation.
const shortResponseRunes = 200

// Options tunes the chunked translation loop.
type Options struct {
	Prompt      string
	ChunkSize   int
	Retries     int
	RetryDelay  time.Duration
	MaxVariance float64
}

// Translator performs chunked chapter translation with bounded retries and
// recursive splitting when the endpoint rejects a prompt as too large.
type Translator struct {
	client   Completer
	splitter *chunker.Splitter
	opts     Options
	logger   *slog.Logger
}

// New constructs a Translator.
func New(client Completer, splitter *chunker.Splitter, opts Options, logger *slog.Logger) (*Translator, error) {
	if client == nil {
		return nil, errors.New("translator: completer required")
	}
	if splitter == nil {
		return nil, errors.New("translator: splitter required")
	}
	if opts.ChunkSize <= 0 {
		return nil, errors.New("translator: chunk size must be positive")
	}
	if opts.Retries <= 0 {
		return nil, errors.New("translator: retry budget must be positive")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Translator{
		client:   client,
		splitter: splitter,
		opts:     opts,
		logger:   logger,
	}, nil
}

// Translate translates chapter text chunk by chunk, strictly in order, and
// validates the reassembled result against the source. Any chunk exhausting
// its retry budget fails the whole chapter.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	chunks := t.splitter.Chunks(text, t.opts.ChunkSize)
	if len(chunks) == 0 {
		return "", services.Wrap(services.ErrValidation, "translate", "chunk input", "chapter content is empty", nil)
	}

	t.logger.Info("translation started",
		logging.Int("chunks", len(chunks)),
		logging.Int("input_runes", len([]rune(text))),
	)

	results := make(map[int]string, len(chunks))
	for _, chunk := range chunks {
		translated, err := t.translateRecursive(ctx, chunk.Text, t.opts.Retries)
		if err != nil {
			return "", services.Wrap(services.ErrExternalTool, "translate",
				fmt.Sprintf("chunk %d/%d", chunk.Index+1, len(chunks)), "", err)
		}
		results[chunk.Index] = translated
		t.logger.Debug("chunk translated",
			logging.Int("chunk", chunk.Index+1),
			logging.Int("chunks", len(chunks)),
		)
	}

	translated := chunker.Reassemble(results, len(chunks))
	if err := ValidateVariance(text, translated, t.opts.MaxVariance); err != nil {
		return "", services.Wrap(services.ErrValidation, "translate", "validate output", "", err)
	}
	return translated, nil
}

// translateRecursive issues one request for text, retrying transient failures
// up to the remaining budget. A prompt-too-large rejection splits the text in
// half and translates each half with a fresh budget.
func (t *Translator) translateRecursive(ctx context.Context, text string, retries int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	for {
		translated, err := t.client.Complete(ctx, t.opts.Prompt, text)
		switch {
		case err == nil:
			if truncated(text, translated) {
				err = fmt.Errorf("response of %d runes for input of %d runes looks truncated",
					len([]rune(translated)), len([]rune(text)))
				break
			}
			return translated, nil
		case errors.Is(err, llm.ErrTokenExceeded):
			return t.translateHalves(ctx, text)
		}

		retries--
		if retries <= 0 {
			return "", fmt.Errorf("retry budget exhausted: %w", err)
		}
		t.logger.Warn("translation attempt failed, retrying",
			logging.Int("retries_remaining", retries),
			logging.Error(err),
		)
		if waitErr := wait(ctx, t.opts.RetryDelay); waitErr != nil {
			return "", waitErr
		}
	}
}

func (t *Translator) translateHalves(ctx context.Context, text string) (string, error) {
	left, right := t.splitter.Halve(text)
	if right == "" {
		return "", errors.New("prompt too large for endpoint and cannot be split further")
	}
	t.logger.Info("prompt too large, splitting in half",
		logging.Int("left_runes", len([]rune(left))),
		logging.Int("right_runes", len([]rune(right))),
	)

	// Each half gets a fresh retry budget.
	leftOut, err := t.translateRecursive(ctx, left, t.opts.Retries)
	if err != nil {
		return "", err
	}
	rightOut, err := t.translateRecursive(ctx, right, t.opts.Retries)
	if err != nil {
		return "", err
	}
	return joinHalves(left, leftOut, rightOut), nil
}

// joinHalves keeps the line boundary between the halves intact when the split
// fell on a newline and the endpoint trimmed it from the response.
func joinHalves(leftSource, leftOut, rightOut string) string {
	if strings.HasSuffix(leftSource, "\n") && !strings.HasSuffix(leftOut, "\n") {
		return leftOut + "\n" + rightOut
	}
	return leftOut + rightOut
}

func truncated(input, output string) bool {
	return len([]rune(output)) < shortResponseRunes && len([]rune(input)) > shortResponseRunes
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ValidateVariance compares source and translated text shape. Line counts
// must agree within maxVariance; when they do not, a character count within
// the same variance still passes. maxVariance <= 0 disables the check.
func ValidateVariance(source, translated string, maxVariance float64) error {
	if maxVariance <= 0 {
		return nil
	}
	if strings.TrimSpace(translated) == "" {
		return errors.New("translated content is empty")
	}

	sourceLines := countLines(source)
	translatedLines := countLines(translated)
	if sourceLines > 0 {
		lineVariance := relativeDifference(sourceLines, translatedLines)
		if lineVariance <= maxVariance {
			return nil
		}
		sourceChars := len([]rune(source))
		translatedChars := len([]rune(translated))
		charVariance := relativeDifference(sourceChars, translatedChars)
		if charVariance <= maxVariance {
			return nil
		}
		return fmt.Errorf("line variance %.2f (source %d lines, translated %d) and char variance %.2f (source %d chars, translated %d) both exceed %.2f",
			lineVariance, sourceLines, translatedLines, charVariance, sourceChars, translatedChars, maxVariance)
	}
	return nil
}

func countLines(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "\n") + 1
}

func relativeDifference(a, b int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(a)
}
