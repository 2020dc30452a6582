// Package seed loads the one-shot bootstrap data that populates the store
// before the server accepts requests.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// Data is an ordered batch of seed records.
type Data struct {
	Projects []model.Project
	Tasks    []model.Task
}

// Source produces seed records. Sources are read once at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) (Data, error)
}

// Bootstrap reads every source in order, applies record defaults, and
// initializes the store with the combined result.
func Bootstrap(ctx context.Context, st *store.Store, logger *zap.Logger, sources ...Source) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var all Data
	for _, src := range sources {
		data, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading seed source %s: %w", src.Name(), err)
		}
		logger.Debug("seed source read",
			zap.String("source", src.Name()),
			zap.Int("projects", len(data.Projects)),
			zap.Int("tasks", len(data.Tasks)),
		)
		all.Projects = append(all.Projects, data.Projects...)
		all.Tasks = append(all.Tasks, data.Tasks...)
	}

	now := time.Now().UTC()
	for i := range all.Tasks {
		applyTaskDefaults(&all.Tasks[i], now)
	}

	if err := st.Initialize(all.Projects, all.Tasks); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	logger.Info("seed data loaded",
		zap.Int("projects", len(all.Projects)),
		zap.Int("tasks", len(all.Tasks)),
	)
	return nil
}

// FromConfig builds the sources named by cfg. File sources come first.
func FromConfig(cfg model.SeedConfig, logger *zap.Logger) []Source {
	var sources []Source
	if cfg.Projects != "" || cfg.Tasks != "" {
		sources = append(sources, FileSource{
			ProjectsPath: cfg.Projects,
			TasksPath:    cfg.Tasks,
			Logger:       logger,
		})
	}
	if cfg.SQLite != "" {
		sources = append(sources, SQLiteSource{Path: cfg.SQLite, Logger: logger})
	}
	return sources
}

// applyTaskDefaults fills a missing status with pending and a missing
// creation time with now.
func applyTaskDefaults(t *model.Task, now time.Time) {
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}
