package services_test

import (
	"errors"
	"testing"

	"inkcast/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "translate", "chunk request", "attempt 3", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "render", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestDetailsStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "translate", "validate output", "line variance 0.42", nil)
	details := services.Details(err)
	want := "translate: validate output: line variance 0.42"
	if details.Message != want {
		t.Fatalf("expected %q, got %q", want, details.Message)
	}
}
