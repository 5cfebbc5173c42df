package chunker

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Chunk is one bounded slice of chapter text sent as a single translation
// request. Index preserves original order so responses can be reassembled
// regardless of completion order.
type Chunk struct {
	Index int
	Text  string
}

// cjkSentenceEnders terminate sentences in text the statistical tokenizer has
// no training data for.
var cjkSentenceEnders = []rune{'。', '！', '？'}

// Splitter cuts chapter text into chunks along line and sentence boundaries.
type Splitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewSplitter constructs a splitter with the bundled sentence model.
func NewSplitter() (*Splitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &Splitter{tokenizer: tokenizer}, nil
}

// Chunks splits text into chunks of at most maxRunes runes each. Boundaries
// fall on line breaks where possible, then sentence breaks, then hard rune
// cuts. Concatenating the chunk texts in index order reproduces the input
// exactly.
func (s *Splitter) Chunks(text string, maxRunes int) []Chunk {
	if text == "" {
		return nil
	}
	if maxRunes <= 0 || len([]rune(text)) <= maxRunes {
		return []Chunk{{Index: 0, Text: text}}
	}

	var (
		chunks  []Chunk
		current strings.Builder
		length  int
	)
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: current.String()})
		current.Reset()
		length = 0
	}

	for _, piece := range s.pieces(text, maxRunes) {
		pieceLen := len([]rune(piece))
		if length > 0 && length+pieceLen > maxRunes {
			flush()
		}
		current.WriteString(piece)
		length += pieceLen
	}
	flush()
	return chunks
}

// Halve splits text into two parts near the midpoint, preferring a line
// break, then a sentence end, then a hard rune cut. Both parts are non-empty
// for any input of at least two runes and concatenate back to the original.
func (s *Splitter) Halve(text string) (string, string) {
	runes := []rune(text)
	if len(runes) < 2 {
		return text, ""
	}
	mid := len(runes) / 2

	if cut := nearestBoundary(runes, mid, func(r rune) bool { return r == '\n' }); cut > 0 {
		return string(runes[:cut]), string(runes[cut:])
	}
	if cut := nearestBoundary(runes, mid, isSentenceEnd); cut > 0 {
		return string(runes[:cut]), string(runes[cut:])
	}
	return string(runes[:mid]), string(runes[mid:])
}

// pieces yields text fragments no longer than maxRunes whose concatenation is
// the original text: lines first, over-long lines by sentence, over-long
// sentences by hard cut.
func (s *Splitter) pieces(text string, maxRunes int) []string {
	var out []string
	for _, line := range splitAfter(text, '\n') {
		if len([]rune(line)) <= maxRunes {
			out = append(out, line)
			continue
		}
		for _, sentence := range s.sentences(line) {
			if len([]rune(sentence)) <= maxRunes {
				out = append(out, sentence)
				continue
			}
			out = append(out, hardSplit(sentence, maxRunes)...)
		}
	}
	return out
}

// sentences splits a line into sentences, falling back to CJK terminators
// when the statistical tokenizer finds no boundaries.
func (s *Splitter) sentences(line string) []string {
	tokens := s.tokenizer.Tokenize(line)
	if len(tokens) > 1 {
		out := make([]string, 0, len(tokens))
		for _, token := range tokens {
			out = append(out, token.Text)
		}
		return out
	}
	if parts := splitAfterAny(line, cjkSentenceEnders); len(parts) > 1 {
		return parts
	}
	return []string{line}
}

func isSentenceEnd(r rune) bool {
	for _, ender := range cjkSentenceEnders {
		if r == ender {
			return true
		}
	}
	return r == '.' || r == '!' || r == '?'
}

// nearestBoundary returns the cut position closest to mid that falls just
// after a rune matching the predicate, or 0 when none exists strictly inside
// the text.
func nearestBoundary(runes []rune, mid int, match func(rune) bool) int {
	best := 0
	bestDistance := len(runes)
	for i, r := range runes {
		if !match(r) {
			continue
		}
		cut := i + 1
		if cut >= len(runes) {
			continue
		}
		distance := cut - mid
		if distance < 0 {
			distance = -distance
		}
		if distance < bestDistance {
			best = cut
			bestDistance = distance
		}
	}
	return best
}

func splitAfter(text string, sep rune) []string {
	return splitAfterAny(text, []rune{sep})
}

func splitAfterAny(text string, seps []rune) []string {
	var (
		out     []string
		current strings.Builder
	)
	for _, r := range text {
		current.WriteRune(r)
		for _, sep := range seps {
			if r == sep {
				out = append(out, current.String())
				current.Reset()
				break
			}
		}
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

func hardSplit(text string, maxRunes int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += maxRunes {
		end := start + maxRunes
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// Reassemble joins translated chunk texts in index order.
func Reassemble(texts map[int]string, count int) string {
	var builder strings.Builder
	for i := 0; i < count; i++ {
		builder.WriteString(texts[i])
	}
	return builder.String()
}
