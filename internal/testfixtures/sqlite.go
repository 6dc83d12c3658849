package testfixtures

import (
	"path/filepath"
	"testing"

	"github.com/example/stampcard/internal/persistence/sqlite"
)

// NewSQLiteStorage opens a file-backed store in a per-test temporary
// directory and registers its cleanup. The schema is applied by Open.
func NewSQLiteStorage(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	storage, err := sqlite.Open(filepath.Join(tb.TempDir(), "stampcard.db"))
	if err != nil {
		tb.Fatalf("open sqlite storage: %v", err)
	}
	tb.Cleanup(func() {
		if err := storage.Close(); err != nil {
			tb.Errorf("close sqlite storage: %v", err)
		}
	})
	return storage
}
