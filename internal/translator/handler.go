package translator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"inkcast/internal/chapter"
	"inkcast/internal/chunker"
	"inkcast/internal/config"
	"inkcast/internal/logging"
	"inkcast/internal/queue"
	"inkcast/internal/services"
	"inkcast/internal/services/llm"
	"inkcast/internal/stage"
)

// Handler is the translation stage: it reads the uploaded chapter file,
// translates its content, and stores the result on the queue item.
type Handler struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client Completer
}

// NewHandler constructs the translation stage handler using the configured
// LLM endpoint.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Handler, error) {
	provider, err := llm.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(llm.Config{
		Provider: provider,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Token:    cfg.LLM.Token,
		Timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return NewHandlerWithDependencies(cfg, store, logger, client), nil
}

// NewHandlerWithDependencies allows injecting the completion client (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Completer) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "translator"))
	}
	return &Handler{cfg: cfg, store: store, logger: stageLogger, client: client}
}

// SetLogger swaps in a stage-scoped logger.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Translating"
	}
	item.ProgressMessage = "Reading chapter file"
	item.ProgressPercent = 0
	item.ErrorMessage = ""

	record, err := chapter.ParseFile(item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "translate", "read chapter", "", err)
	}
	item.BookTitle = record.Book
	item.ChapterTitle = record.Title
	item.URL = record.URL
	if item.Source == "" {
		item.Source = record.Source
	}
	if item.BookID == "" {
		item.BookID = record.BookID
	}

	logger.Info("starting translation",
		logging.String("book", record.Book),
		logging.String("chapter", record.Title),
		logging.Int("content_runes", len([]rune(record.Content))),
	)
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	record, err := chapter.ParseFile(item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "translate", "read chapter", "", err)
	}

	splitter, err := chunker.NewSplitter()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "translate", "load sentence model", "", err)
	}

	translator, err := New(h.client, splitter, Options{
		Prompt:      h.cfg.LLM.Prompt,
		ChunkSize:   h.cfg.Translation.ChunkSize,
		Retries:     h.cfg.Translation.ChunkRetries,
		RetryDelay:  time.Duration(h.cfg.Translation.RetryDelaySeconds) * time.Second,
		MaxVariance: h.cfg.Translation.MaxVariance,
	}, logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "translate", "configure translator", "", err)
	}

	translated, err := translator.Translate(ctx, record.Content)
	if err != nil {
		// The uploaded file stays in the inbox so the chapter retries later.
		return err
	}

	item.TranslatedText = translated
	item.SetProgressComplete("Translating", fmt.Sprintf("Translated %q", strings.TrimSpace(record.Title)))
	logger.Info("translation finished",
		logging.Int("translated_runes", len([]rune(translated))),
	)
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.cfg.LLM.Model == "" || h.cfg.LLM.BaseURL == "" {
		return stage.Unhealthy("translator", "llm endpoint not configured")
	}
	if _, err := os.Stat(h.cfg.Paths.InboxDir); err != nil {
		return stage.Unhealthy("translator", fmt.Sprintf("inbox unavailable: %v", err))
	}
	return stage.Healthy("translator")
}

var _ stage.Handler = (*Handler)(nil)
