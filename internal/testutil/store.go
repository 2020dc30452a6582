package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/seed"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore creates a store initialized with the given records.
func NewTestStore(t *testing.T, projects []model.Project, tasks []model.Task) *store.Store {
	t.Helper()

	s := store.New()
	if err := s.Initialize(projects, tasks); err != nil {
		t.Fatalf("initializing test store: %v", err)
	}
	return s
}

// NewSeedDB writes data into a SQLite seed database under t.TempDir and
// returns its path.
func NewSeedDB(t *testing.T, data seed.Data) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seed.db")
	if err := seed.WriteSQLite(context.Background(), path, data); err != nil {
		t.Fatalf("writing seed db: %v", err)
	}
	return path
}
