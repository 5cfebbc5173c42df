package translator_test

import (
	"context"
	"path/filepath"
	"testing"

	"inkcast/internal/queue"
	"inkcast/internal/testsupport"
	"inkcast/internal/translator"
)

func TestHandlerPrepareLoadsChapterMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(cfg.Paths.InboxDir, "syosetu-n1-0001.json")
	testsupport.WriteChapterJSON(t, path, "n1", "Book Title", "syosetu", "Chapter One", "https://example.com/1", "本文です。")
	item := testsupport.NewChapter(t, store, path, "syosetu", "n1", 1)

	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		return user, nil
	}}
	handler := translator.NewHandlerWithDependencies(cfg, store, nil, client)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if item.BookTitle != "Book Title" || item.ChapterTitle != "Chapter One" {
		t.Fatalf("expected metadata on item, got %+v", item)
	}
	if item.URL != "https://example.com/1" {
		t.Fatalf("expected chapter url on item, got %q", item.URL)
	}
}

func TestHandlerPrepareFailsOnMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewChapter(t, store, filepath.Join(cfg.Paths.InboxDir, "missing.json"), "syosetu", "n1", 1)

	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		return user, nil
	}}
	handler := translator.NewHandlerWithDependencies(cfg, store, nil, client)

	if err := handler.Prepare(context.Background(), item); err == nil {
		t.Fatal("expected error for missing chapter file")
	}
}

func TestHandlerExecuteStoresTranslation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(cfg.Paths.InboxDir, "syosetu-n1-0001.json")
	testsupport.WriteChapterJSON(t, path, "n1", "Book Title", "syosetu", "Chapter One", "", "一行目。\n二行目。")
	item := testsupport.NewChapter(t, store, path, "syosetu", "n1", 1)
	item.Status = queue.StatusTranslating

	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		return user, nil
	}}
	handler := translator.NewHandlerWithDependencies(cfg, store, nil, client)

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if item.TranslatedText == "" {
		t.Fatal("expected translated text on item")
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected complete progress, got %f", item.ProgressPercent)
	}
}

func TestHandlerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		return user, nil
	}}
	handler := translator.NewHandlerWithDependencies(cfg, store, nil, client)

	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy stage, got %+v", health)
	}

	cfg.LLM.Model = ""
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy stage without model")
	}
}
