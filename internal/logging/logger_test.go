package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"inkcast/internal/logging"
	"inkcast/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsItemAndStage(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, nil)
	logger := slog.New(handler)

	ctx := services.WithItemID(context.Background(), 42)
	ctx = services.WithStage(ctx, "translating")

	logging.WithContext(ctx, logger).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "item_id=42") {
		t.Fatalf("expected item_id in output, got %q", out)
	}
	if !strings.Contains(out, "stage=translating") {
		t.Fatalf("expected stage in output, got %q", out)
	}
}

func TestNewComponentLoggerNilBase(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "inbox")
	// Must be safe to use even with a nil base.
	logger.Info("noop")
}
