package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inkcast/internal/chapter"
	"inkcast/internal/logging"
)

// ScanInbox registers newly uploaded chapter files as pending queue items.
// Files that do not follow the <source>-<bookid>-<index>.json pattern are
// skipped. Returns the number of chapters enqueued.
func (m *Manager) ScanInbox(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(m.cfg.Paths.InboxDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		identity, err := chapter.ParseFilename(entry.Name())
		if err != nil {
			if errors.Is(err, chapter.ErrNotChapterFile) {
				m.logger.Debug("ignoring non-chapter file in inbox",
					logging.String("file", entry.Name()))
				continue
			}
			return added, err
		}

		sourcePath := filepath.Join(m.cfg.Paths.InboxDir, entry.Name())
		existing, err := m.store.FindBySourcePath(ctx, sourcePath)
		if err != nil {
			return added, fmt.Errorf("look up %s: %w", entry.Name(), err)
		}
		if existing != nil {
			continue
		}

		item, err := m.store.NewChapter(ctx, sourcePath, identity.Source, identity.BookID, identity.Index)
		if err != nil {
			return added, fmt.Errorf("enqueue %s: %w", entry.Name(), err)
		}
		added++
		m.logger.Info("chapter queued",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String("source_file", entry.Name()),
			logging.String("book_id", identity.BookID),
			logging.Int("chapter", identity.Index),
		)
	}
	return added, nil
}
