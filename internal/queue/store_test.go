package queue_test

import (
	"context"
	"testing"
	"time"

	"inkcast/internal/queue"
	"inkcast/internal/testsupport"
)

func TestNewChapterDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewChapter(t, store, "/inbox/syosetu-n4006r-0001.json", "syosetu", "n4006r", 1)
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if item.Source != "syosetu" || item.BookID != "n4006r" || item.ChapterIndex != 1 {
		t.Fatalf("unexpected chapter identity: %+v", item)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewChapter(t, store, "/inbox/syosetu-n4006r-0002.json", "syosetu", "n4006r", 2)
	item.Status = queue.StatusTranslated
	item.BookTitle = "The Apothecary Diaries"
	item.ChapterTitle = "Chapter Two"
	item.URL = "https://example.com/n4006r/2"
	item.TranslatedText = "Translated body."
	item.SetProgressComplete("Translating", "translation complete")
	heartbeat := time.Now().UTC().Truncate(time.Second)
	item.LastHeartbeat = &heartbeat

	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Status != queue.StatusTranslated {
		t.Fatalf("expected translated status, got %s", got.Status)
	}
	if got.BookTitle != "The Apothecary Diaries" || got.ChapterTitle != "Chapter Two" {
		t.Fatalf("unexpected titles: %+v", got)
	}
	if got.TranslatedText != "Translated body." {
		t.Fatalf("expected translated text to persist, got %q", got.TranslatedText)
	}
	if got.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %f", got.ProgressPercent)
	}
	if got.LastHeartbeat == nil || !got.LastHeartbeat.Equal(heartbeat) {
		t.Fatalf("expected heartbeat %v, got %v", heartbeat, got.LastHeartbeat)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	got, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing item, got %+v", got)
	}
}

func TestFindBySourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewChapter(t, store, "/inbox/kakuyomu-abc123-0005.json", "kakuyomu", "abc123", 5)

	got, err := store.FindBySourcePath(ctx, "/inbox/kakuyomu-abc123-0005.json")
	if err != nil {
		t.Fatalf("FindBySourcePath returned error: %v", err)
	}
	if got == nil || got.BookID != "abc123" {
		t.Fatalf("expected queued chapter, got %+v", got)
	}

	missing, err := store.FindBySourcePath(ctx, "/inbox/unknown.json")
	if err != nil {
		t.Fatalf("FindBySourcePath returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown path, got %+v", missing)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewChapter(t, store, "/inbox/a-0001.json", "syosetu", "a", 1)
	testsupport.NewChapter(t, store, "/inbox/a-0002.json", "syosetu", "a", 2)

	got, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses returned error: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("expected oldest pending item %d, got %+v", first.ID, got)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusRendered)
	if err != nil {
		t.Fatalf("NextForStatuses returned error: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil when no items match, got %+v", none)
	}
}

func TestResetStuckProcessingRollsBackStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		stuck queue.Status
		want  queue.Status
	}{
		{queue.StatusTranslating, queue.StatusPending},
		{queue.StatusRendering, queue.StatusTranslated},
		{queue.StatusPublishing, queue.StatusRendered},
	}

	ids := make([]int64, len(cases))
	for i, tc := range cases {
		item := testsupport.NewChapter(t, store, "", "syosetu", "b", i+1)
		item.Status = tc.stuck
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		ids[i] = item.ID
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing returned error: %v", err)
	}
	if affected != int64(len(cases)) {
		t.Fatalf("expected %d items reset, got %d", len(cases), affected)
	}

	for i, tc := range cases {
		got, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID returned error: %v", err)
		}
		if got.Status != tc.want {
			t.Fatalf("expected %s to roll back to %s, got %s", tc.stuck, tc.want, got.Status)
		}
	}
}

func TestReclaimStaleProcessingHonorsCutoff(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stale := testsupport.NewChapter(t, store, "", "syosetu", "c", 1)
	stale.Status = queue.StatusTranslating
	old := time.Now().UTC().Add(-time.Hour)
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	fresh := testsupport.NewChapter(t, store, "", "syosetu", "c", 2)
	fresh.Status = queue.StatusTranslating
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	affected, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing returned error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 reclaimed item, got %d", affected)
	}

	reclaimed, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if reclaimed.Status != queue.StatusPending {
		t.Fatalf("expected stale item back to pending, got %s", reclaimed.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if untouched.Status != queue.StatusTranslating {
		t.Fatalf("expected fresh item untouched, got %s", untouched.Status)
	}
}

func TestRetryFailedSelectedIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	failed := testsupport.NewChapter(t, store, "", "syosetu", "d", 1)
	failed.SetFailed("translation gave up")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	other := testsupport.NewChapter(t, store, "", "syosetu", "d", 2)
	other.SetFailed("render failed")
	if err := store.Update(ctx, other); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	affected, err := store.RetryFailed(ctx, failed.ID)
	if err != nil {
		t.Fatalf("RetryFailed returned error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 retried item, got %d", affected)
	}

	got, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("expected retried item pending, got %s", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("expected cleared error message, got %q", got.ErrorMessage)
	}

	untouched, err := store.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if untouched.Status != queue.StatusFailed {
		t.Fatalf("expected other item still failed, got %s", untouched.Status)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	done := testsupport.NewChapter(t, store, "", "syosetu", "e", 1)
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	testsupport.NewChapter(t, store, "", "syosetu", "e", 2)

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 completed item removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining item, got %d", len(remaining))
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 item cleared, got %d", removed)
	}
}

func TestSummaryCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewChapter(t, store, "", "syosetu", "f", 1)

	working := testsupport.NewChapter(t, store, "", "syosetu", "f", 2)
	working.Status = queue.StatusRendering
	if err := store.Update(ctx, working); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	broken := testsupport.NewChapter(t, store, "", "syosetu", "f", 3)
	broken.SetFailed("boom")
	if err := store.Update(ctx, broken); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if summary.Total != 3 || summary.Pending != 1 || summary.Processing != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Translating "); !ok || status != queue.StatusTranslating {
		t.Fatalf("expected translating, got %q ok=%v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
}
