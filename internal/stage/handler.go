package stage

import (
	"context"
	"log/slog"

	"inkcast/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware lets the execution helper hand a stage-scoped logger to a
// handler before Prepare runs.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
