// Package backup exports and imports the full key-value storage as a
// portable JSON document.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/example/extension-scheduler/internal/persistence"
)

// DocumentDescription marks exported files so imports can reject
// unrelated JSON.
const DocumentDescription = "Extension Data Backup"

// DocumentVersion is the current backup document format version.
const DocumentVersion = 1

// Document is the on-disk backup format.
type Document struct {
	Description string            `json:"description"`
	Date        string            `json:"date"`
	Version     int               `json:"version"`
	Storage     map[string]string `json:"storage"`
}

// Reloader re-reads persisted state after an import replaced it.
type Reloader interface {
	Load(ctx context.Context) error
}

// Service implements backup export and import over the key-value store.
type Service struct {
	store    persistence.KeyValueStore
	reloader Reloader
	dir      string
	now      func() time.Time
	logger   *slog.Logger
}

// NewService builds a backup Service. dir may be empty, in which case
// Export only returns the document without writing a file. now defaults
// to time.Now.
func NewService(store persistence.KeyValueStore, reloader Reloader, dir string, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, reloader: reloader, dir: dir, now: now, logger: logger}
}

// Export snapshots the entire store into a Document. When a backup
// directory is configured the document is also written there atomically,
// so a crash mid-write never leaves a truncated backup file.
func (s *Service) Export(ctx context.Context) (Document, error) {
	storage, err := s.store.All(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export backup: %w", err)
	}
	if storage == nil {
		storage = map[string]string{}
	}

	now := s.now()
	doc := Document{
		Description: DocumentDescription,
		Date:        now.Format(time.RFC3339),
		Version:     DocumentVersion,
		Storage:     storage,
	}

	if s.dir != "" {
		if err := s.writeFile(doc, now); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

func (s *Service) writeFile(doc Document, now time.Time) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export backup: %w", err)
	}

	name := fmt.Sprintf("extension-backup-%s.json", now.Format("20060102-150405"))
	path := filepath.Join(s.dir, name)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export backup: write %s: %w", path, err)
	}

	s.logger.Info("wrote backup file", "path", path, "keys", len(doc.Storage))
	return nil
}

// Import validates a Document, replaces the full store contents with its
// storage map, and asks the reloader to rebuild in-memory state from the
// new contents.
func (s *Service) Import(ctx context.Context, doc Document) error {
	if doc.Description != DocumentDescription {
		return fmt.Errorf("import backup: unrecognized document description %q", doc.Description)
	}
	if doc.Version != DocumentVersion {
		return fmt.Errorf("import backup: unsupported document version %d", doc.Version)
	}
	if doc.Storage == nil {
		return fmt.Errorf("import backup: document has no storage section")
	}

	if err := s.store.ReplaceAll(ctx, doc.Storage); err != nil {
		return fmt.Errorf("import backup: %w", err)
	}

	if s.reloader != nil {
		if err := s.reloader.Load(ctx); err != nil {
			return fmt.Errorf("import backup: reload state: %w", err)
		}
	}

	s.logger.Info("imported backup", "keys", len(doc.Storage), "date", doc.Date)
	return nil
}
