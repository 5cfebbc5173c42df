package podcast

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"inkcast/internal/fileutil"
)

// BuildFeed rebuilds the channel feed from the pristine template, splicing
// every item fragment in place of the placeholder comment. Fragments are
// inserted newest first. Rebuilding is a pure text operation; fragments are
// not parsed or validated. It returns the number of items spliced.
func BuildFeed(root, title string, logger *slog.Logger) (int, error) {
	paths := ChannelPaths(root, title)

	template, err := os.ReadFile(paths.TemplatePath)
	if err != nil {
		return 0, fmt.Errorf("podcast: %s is not initialized: %w", title, err)
	}
	if strings.Count(string(template), ItemsPlaceholder) != 1 {
		return 0, fmt.Errorf("podcast: channel template %s must contain %q exactly once", paths.TemplatePath, ItemsPlaceholder)
	}

	fragments, err := loadFragments(paths.ItemsDir)
	if err != nil {
		return 0, err
	}
	if len(fragments) == 0 && logger != nil {
		logger.Warn("no episode fragments found, feed will have no items",
			slog.String("items_dir", paths.ItemsDir))
	}

	feed := spliceItems(string(template), fragments)
	if err := fileutil.WriteFileAtomic(paths.FeedPath, []byte(feed), 0o644); err != nil {
		return 0, fmt.Errorf("podcast: write feed: %w", err)
	}
	return len(fragments), nil
}

// loadFragments reads every fragment in dir, newest episode first.
func loadFragments(dir string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("podcast: list item fragments: %w", err)
	}
	// Reverse natural order so episode 0010 outranks 0002 and 0002 outranks 0001.
	sort.Slice(entries, func(i, j int) bool {
		return natural.Less(filepath.Base(entries[j]), filepath.Base(entries[i]))
	})

	fragments := make([]string, 0, len(entries))
	for _, path := range entries {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("podcast: read item fragment %s: %w", path, err)
		}
		fragments = append(fragments, strings.TrimRight(string(raw), "\n"))
	}
	return fragments, nil
}

// spliceItems replaces the placeholder line with the fragments, re-indenting
// each fragment line to the placeholder's indentation.
func spliceItems(template string, fragments []string) string {
	lines := strings.Split(template, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != ItemsPlaceholder {
			continue
		}
		indent := line[:strings.Index(line, ItemsPlaceholder)]

		var spliced []string
		for _, fragment := range fragments {
			for _, fragmentLine := range strings.Split(fragment, "\n") {
				if strings.TrimSpace(fragmentLine) == "" {
					continue
				}
				spliced = append(spliced, indent+fragmentLine)
			}
		}

		replaced := append([]string{}, lines[:i]...)
		replaced = append(replaced, spliced...)
		replaced = append(replaced, lines[i+1:]...)
		return strings.Join(replaced, "\n")
	}
	// Placeholder embedded mid-line in a hand-edited template.
	return strings.Replace(template, ItemsPlaceholder, strings.Join(fragments, "\n"), 1)
}
