package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/extension-scheduler/internal/persistence/sqlite"
)

// OpenStore opens a migrated SQLite key-value store backed by a temporary
// file that is removed when the test finishes.
func OpenStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	store, err := sqlite.Open(dsn)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close sqlite store: %v", err)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate sqlite store: %v", err)
	}
	return store
}
