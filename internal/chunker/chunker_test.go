package chunker_test

import (
	"strings"
	"testing"

	"inkcast/internal/chunker"
)

func newSplitter(t *testing.T) *chunker.Splitter {
	t.Helper()
	splitter, err := chunker.NewSplitter()
	if err != nil {
		t.Fatalf("NewSplitter returned error: %v", err)
	}
	return splitter
}

func TestChunksShortTextSingleChunk(t *testing.T) {
	splitter := newSplitter(t)
	chunks := splitter.Chunks("short text", 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short text" || chunks[0].Index != 0 {
		t.Fatalf("unexpected chunk %+v", chunks[0])
	}
}

func TestChunksEmptyText(t *testing.T) {
	splitter := newSplitter(t)
	if chunks := splitter.Chunks("", 100); chunks != nil {
		t.Fatalf("expected nil for empty text, got %v", chunks)
	}
}

func TestChunksConcatenationReconstructsInput(t *testing.T) {
	splitter := newSplitter(t)
	text := strings.Repeat("彼女は言った。彼は笑った。\n", 40) + "最後の行です。"

	chunks := splitter.Chunks(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("expected chunk index %d, got %d", i, chunk.Index)
		}
		rebuilt.WriteString(chunk.Text)
	}
	if rebuilt.String() != text {
		t.Fatal("expected chunk concatenation to reproduce input")
	}
}

func TestChunksRespectMaxRunes(t *testing.T) {
	splitter := newSplitter(t)
	text := strings.Repeat("line one\nline two\n", 30)

	for _, chunk := range splitter.Chunks(text, 40) {
		if got := len([]rune(chunk.Text)); got > 40 {
			t.Fatalf("chunk %d exceeds limit: %d runes", chunk.Index, got)
		}
	}
}

func TestChunksSplitsOverlongLineBySentence(t *testing.T) {
	splitter := newSplitter(t)
	// One line, no newlines, sentence boundaries only.
	text := "The first sentence is here. The second sentence follows it. The third one ends the line."

	chunks := splitter.Chunks(text, 40)
	if len(chunks) < 2 {
		t.Fatalf("expected sentence-level split, got %d chunks", len(chunks))
	}
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Text)
	}
	if rebuilt.String() != text {
		t.Fatal("expected chunk concatenation to reproduce input")
	}
}

func TestChunksHardSplitsUnbreakableText(t *testing.T) {
	splitter := newSplitter(t)
	text := strings.Repeat("あ", 100)

	chunks := splitter.Chunks(text, 30)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 hard chunks, got %d", len(chunks))
	}
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		if got := len([]rune(chunk.Text)); got > 30 {
			t.Fatalf("hard chunk exceeds limit: %d runes", got)
		}
		rebuilt.WriteString(chunk.Text)
	}
	if rebuilt.String() != text {
		t.Fatal("expected chunk concatenation to reproduce input")
	}
}

func TestHalvePrefersLineBreak(t *testing.T) {
	splitter := newSplitter(t)
	text := "first line\nsecond line that is quite a bit longer"

	left, right := splitter.Halve(text)
	if left != "first line\n" {
		t.Fatalf("expected cut after line break, got left %q", left)
	}
	if left+right != text {
		t.Fatal("expected halves to concatenate to input")
	}
}

func TestHalveFallsBackToSentenceEnd(t *testing.T) {
	splitter := newSplitter(t)
	text := "彼女は言った。彼は笑った。そして去った。"

	left, right := splitter.Halve(text)
	if !strings.HasSuffix(left, "。") {
		t.Fatalf("expected cut after sentence end, got left %q", left)
	}
	if right == "" {
		t.Fatal("expected non-empty right half")
	}
	if left+right != text {
		t.Fatal("expected halves to concatenate to input")
	}
}

func TestHalveHardCutsUnbreakableText(t *testing.T) {
	splitter := newSplitter(t)
	text := strings.Repeat("x", 10)

	left, right := splitter.Halve(text)
	if left != "xxxxx" || right != "xxxxx" {
		t.Fatalf("expected midpoint cut, got %q / %q", left, right)
	}
}

func TestHalveTinyInput(t *testing.T) {
	splitter := newSplitter(t)
	left, right := splitter.Halve("a")
	if left != "a" || right != "" {
		t.Fatalf("expected single-rune text unchanged, got %q / %q", left, right)
	}
}

func TestReassembleOrdersChunks(t *testing.T) {
	texts := map[int]string{2: "three", 0: "one", 1: "two"}
	if got := chunker.Reassemble(texts, 3); got != "onetwothree" {
		t.Fatalf("expected ordered reassembly, got %q", got)
	}
}
