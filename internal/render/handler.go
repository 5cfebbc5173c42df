package render

import (
	"context"
	"fmt"
	"log/slog"

	"inkcast/internal/config"
	"inkcast/internal/fileutil"
	"inkcast/internal/logging"
	"inkcast/internal/queue"
	"inkcast/internal/services"
	"inkcast/internal/stage"
)

// Handler is the rendering stage: it writes translated chapter text as HTML
// into the library.
type Handler struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	renderer *Renderer
}

// NewHandler constructs the rendering stage handler.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "render"))
	}
	return &Handler{
		cfg:      cfg,
		store:    store,
		logger:   stageLogger,
		renderer: NewRenderer(cfg.Paths.TemplateDir, cfg.Paths.LibraryDir),
	}
}

// SetLogger swaps in a stage-scoped logger.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Rendering"
	}
	item.ProgressMessage = "Preparing chapter render"
	item.ProgressPercent = 0
	item.ErrorMessage = ""

	if item.TranslatedText == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"no translated text present; translation must run before rendering", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	outputPath, err := h.renderer.Render(Input{
		Book:         item.BookTitle,
		BookID:       item.BookID,
		Source:       item.Source,
		ChapterTitle: item.ChapterTitle,
		ChapterIndex: item.ChapterIndex,
		URL:          item.URL,
		Translated:   item.TranslatedText,
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "render", "write chapter html", "", err)
	}

	item.OutputPath = outputPath
	item.SetProgressComplete("Rendering", fmt.Sprintf("Rendered %s", outputPath))
	logger.Info("chapter rendered", logging.String("output", outputPath))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.cfg.Paths.LibraryDir == "" {
		return stage.Unhealthy("render", "library directory not configured")
	}
	if !fileutil.DirExists(h.cfg.Paths.LibraryDir) {
		return stage.Unhealthy("render", "library directory missing")
	}
	return stage.Healthy("render")
}

var _ stage.Handler = (*Handler)(nil)
