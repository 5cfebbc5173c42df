package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inkcast/internal/config"
	"inkcast/internal/fileutil"
	"inkcast/internal/logging"
	"inkcast/internal/queue"
	"inkcast/internal/services"
	"inkcast/internal/services/gitops"
	"inkcast/internal/stage"
)

// Handler is the publishing stage: it commits the rendered library to the
// static-site repository and pushes it.
type Handler struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	git    gitops.Client
}

// NewHandler constructs the publishing stage handler with a real git client.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	return NewHandlerWithDependencies(cfg, store, logger, gitops.NewCLI(gitops.WithBinary(cfg.GitBinary())))
}

// NewHandlerWithDependencies allows injecting the git client (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, git gitops.Client) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "publish"))
	}
	return &Handler{cfg: cfg, store: store, logger: stageLogger, git: git}
}

// SetLogger swaps in a stage-scoped logger.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Publishing"
	}
	item.ProgressMessage = "Preparing publish"
	item.ProgressPercent = 0
	item.ErrorMessage = ""

	if item.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "publish", "validate inputs",
			"no rendered output present; rendering must run before publishing", nil)
	}
	if !fileutil.FileExists(item.OutputPath) {
		return services.Wrap(services.ErrValidation, "publish", "validate inputs",
			fmt.Sprintf("rendered output missing: %s", item.OutputPath), nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	if !h.cfg.Publish.Enabled {
		item.SetProgressComplete("Publishing", "Publishing disabled, chapter kept locally")
		logger.Info("publishing disabled, skipping git push")
		return nil
	}

	message := commitMessage(item)
	err := h.git.Publish(ctx, h.cfg.Paths.LibraryDir, message, h.cfg.Publish.Remote, h.cfg.Publish.Branch)
	if err != nil {
		// A rejected push needs manual resolution; no merge or retry here.
		return services.Wrap(services.ErrExternalTool, "publish", "git push", "", err)
	}

	item.SetProgressComplete("Publishing", fmt.Sprintf("Published %s", item.OutputPath))
	logger.Info("chapter published",
		logging.String("output", item.OutputPath),
		logging.String("branch", h.cfg.Publish.Branch),
	)
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if !h.cfg.Publish.Enabled {
		return stage.Healthy("publish")
	}
	if !fileutil.DirExists(h.cfg.Paths.LibraryDir) {
		return stage.Unhealthy("publish", "library directory missing")
	}
	return stage.Healthy("publish")
}

func commitMessage(item *queue.Item) string {
	book := strings.TrimSpace(item.BookTitle)
	if book == "" {
		book = strings.TrimSpace(item.BookID)
	}
	return fmt.Sprintf("Publish %s chapter %04d", book, item.ChapterIndex)
}

var _ stage.Handler = (*Handler)(nil)
