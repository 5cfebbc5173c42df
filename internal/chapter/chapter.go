package chapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is one uploaded chapter payload.
type Record struct {
	BookID  string `json:"bookid"`
	Book    string `json:"book"`
	Source  string `json:"source"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Identity is the chapter identity carried in the upload filename,
// <source>-<bookid>-<index>.json.
type Identity struct {
	Source string
	BookID string
	Index  int
}

// ErrNotChapterFile reports a file whose name does not follow the upload
// naming convention. The inbox scanner skips these rather than failing.
var ErrNotChapterFile = errors.New("not a chapter file")

// ParseFile reads and validates an uploaded chapter JSON file. Text fields
// are normalized to NFC so chunking and rendering see consistent rune counts.
func ParseFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chapter file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse chapter file %s: %w", filepath.Base(path), err)
	}

	record.BookID = strings.TrimSpace(record.BookID)
	record.Book = strings.TrimSpace(record.Book)
	record.Source = strings.TrimSpace(record.Source)
	record.Title = norm.NFC.String(strings.TrimSpace(record.Title))
	record.URL = strings.TrimSpace(record.URL)
	record.Content = norm.NFC.String(record.Content)

	if record.BookID == "" {
		return nil, fmt.Errorf("chapter file %s: bookid is required", filepath.Base(path))
	}
	if record.Book == "" {
		return nil, fmt.Errorf("chapter file %s: book is required", filepath.Base(path))
	}
	if strings.TrimSpace(record.Content) == "" {
		return nil, fmt.Errorf("chapter file %s: content is empty", filepath.Base(path))
	}
	return &record, nil
}

// ParseFilename extracts the chapter identity from an upload filename. The
// book identifier may itself contain hyphens; the first segment is always the
// source and the last is always the chapter index.
func ParseFilename(path string) (Identity, error) {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), ".json") {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotChapterFile, base)
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(stem, "-")
	if len(parts) < 3 {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotChapterFile, base)
	}

	index, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || index < 0 {
		return Identity{}, fmt.Errorf("%w: %s has no chapter index", ErrNotChapterFile, base)
	}

	identity := Identity{
		Source: parts[0],
		BookID: strings.Join(parts[1:len(parts)-1], "-"),
		Index:  index,
	}
	if identity.Source == "" || identity.BookID == "" {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotChapterFile, base)
	}
	return identity, nil
}
