package translator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inkcast/internal/chunker"
	"inkcast/internal/services/llm"
	"inkcast/internal/translator"
)

type fakeCompleter struct {
	complete func(ctx context.Context, system, user string) (string, error)
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.complete(ctx, system, user)
}

func newSplitter(t *testing.T) *chunker.Splitter {
	t.Helper()
	splitter, err := chunker.NewSplitter()
	if err != nil {
		t.Fatalf("NewSplitter returned error: %v", err)
	}
	return splitter
}

func newTranslator(t *testing.T, client translator.Completer, opts translator.Options) *translator.Translator {
	t.Helper()
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 4000
	}
	if opts.Retries == 0 {
		opts.Retries = 5
	}
	tr, err := translator.New(client, newSplitter(t), opts, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return tr
}

func TestTranslateSingleChunk(t *testing.T) {
	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		return "translated: " + user, nil
	}}
	tr := newTranslator(t, client, translator.Options{})

	got, err := tr.Translate(context.Background(), "短い文章です。")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "translated: 短い文章です。" {
		t.Fatalf("unexpected translation %q", got)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 request, got %d", client.calls)
	}
}

func TestTranslateReassemblesChunksInOrder(t *testing.T) {
	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		return user, nil
	}}
	tr := newTranslator(t, client, translator.Options{ChunkSize: 30})

	text := strings.Repeat("一行目です。\n二行目です。\n", 10)
	got, err := tr.Translate(context.Background(), text)
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != text {
		t.Fatal("expected identity translation to reproduce input order")
	}
	if client.calls < 2 {
		t.Fatalf("expected multiple chunk requests, got %d", client.calls)
	}
}

func TestTranslateRetriesTransientFailures(t *testing.T) {
	attempts := 0
	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("connection reset")
		}
		return user, nil
	}}
	tr := newTranslator(t, client, translator.Options{Retries: 5})

	got, err := tr.Translate(context.Background(), "text")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "text" {
		t.Fatalf("unexpected translation %q", got)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestTranslateFailsAfterRetryBudget(t *testing.T) {
	client := &fakeCompleter{complete: func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("upstream down")
	}}
	tr := newTranslator(t, client, translator.Options{Retries: 5})

	_, err := tr.Translate(context.Background(), "text")
	if err == nil {
		t.Fatal("expected failure after exhausted retries")
	}
	if client.calls != 5 {
		t.Fatalf("expected 5 attempts, got %d", client.calls)
	}
}

func TestTranslateSplitsOnTokenExceeded(t *testing.T) {
	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		if len([]rune(user)) > 20 {
			return "", llm.ErrTokenExceeded
		}
		return user, nil
	}}
	tr := newTranslator(t, client, translator.Options{ChunkSize: 4000})

	text := "一二三四五六七八九十。\n壱弐参肆伍陸漆捌玖拾。\n"
	got, err := tr.Translate(context.Background(), text)
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != text {
		t.Fatalf("expected identity translation after splitting, got %q", got)
	}
}

func TestTranslateTreatsShortResponseAsFailure(t *testing.T) {
	longInput := strings.Repeat("a", 300)
	client := &fakeCompleter{complete: func(_ context.Context, _, _ string) (string, error) {
		return "tiny", nil
	}}
	tr := newTranslator(t, client, translator.Options{Retries: 2, MaxVariance: 0})

	_, err := tr.Translate(context.Background(), longInput)
	if err == nil {
		t.Fatal("expected truncated responses to exhaust the retry budget")
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", client.calls)
	}
}

func TestTranslateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeCompleter{complete: func(ctx context.Context, _, _ string) (string, error) {
		cancel()
		return "", errors.New("temporary")
	}}
	tr := newTranslator(t, client, translator.Options{Retries: 5, RetryDelay: 1})

	if _, err := tr.Translate(ctx, "text"); err == nil {
		t.Fatal("expected error once context is cancelled")
	}
}

func TestValidateVariance(t *testing.T) {
	fiveLines := "a\nb\nc\nd\ne"
	cases := []struct {
		name       string
		source     string
		translated string
		variance   float64
		wantErr    bool
	}{
		{"matching lines", fiveLines, "1\n2\n3\n4\n5", 0.10, false},
		{"line drift within variance", strings.Repeat("x\n", 19) + "x", strings.Repeat("y\n", 17) + "y", 0.10, false},
		{"line drift too high but chars match", fiveLines, "abcdefghi", 0.10, false},
		{"both checks fail", fiveLines, strings.Repeat("long translated text ", 20), 0.10, true},
		{"empty translation", fiveLines, "   ", 0.10, true},
		{"validation disabled", fiveLines, "anything", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := translator.ValidateVariance(tc.source, tc.translated, tc.variance)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestTranslateFailureMentionsChunk(t *testing.T) {
	client := &fakeCompleter{complete: func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("boom")
	}}
	tr := newTranslator(t, client, translator.Options{Retries: 1})

	_, err := tr.Translate(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chunk 1/1") {
		t.Fatalf("expected chunk position in error, got %v", err)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	client := &fakeCompleter{complete: func(_ context.Context, _, _ string) (string, error) { return "", nil }}
	splitter := newSplitter(t)

	cases := []translator.Options{
		{ChunkSize: 0, Retries: 5},
		{ChunkSize: 100, Retries: 0},
	}
	for i, opts := range cases {
		if _, err := translator.New(client, splitter, opts, nil); err == nil {
			t.Fatalf("case %d: expected constructor error", i)
		}
	}
}

func TestTranslatePreservesLineStructureAcrossSplit(t *testing.T) {
	// The endpoint trims trailing newlines; the join restores the boundary.
	client := &fakeCompleter{complete: func(_ context.Context, _, user string) (string, error) {
		if len([]rune(user)) > 15 {
			return "", llm.ErrTokenExceeded
		}
		return strings.TrimRight(user, "\n"), nil
	}}
	tr := newTranslator(t, client, translator.Options{ChunkSize: 4000, MaxVariance: 0.10})

	text := "一行目の文です。\n二行目の文です。\n三行目の文です。"
	got, err := tr.Translate(context.Background(), text)
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if gotLines, wantLines := strings.Count(got, "\n"), strings.Count(text, "\n"); gotLines != wantLines {
		t.Fatalf("expected %d line breaks, got %d in %q", wantLines, gotLines, got)
	}
}
