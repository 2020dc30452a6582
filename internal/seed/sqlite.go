package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteSource reads seed records from a SQLite database. The database is
// only read; nothing the service does afterwards is written back.
type SQLiteSource struct {
	Path   string
	Logger *zap.Logger
}

// Name implements Source.
func (s SQLiteSource) Name() string { return "sqlite:" + s.Path }

// Load implements Source. A missing database file yields no records.
func (s SQLiteSource) Load(ctx context.Context) (Data, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(s.Path); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("seed database not found", zap.String("path", s.Path))
		return Data{}, nil
	}

	db, err := openSQLite(s.Path)
	if err != nil {
		return Data{}, err
	}
	defer db.Close()

	var data Data
	if err := db.SelectContext(ctx, &data.Projects,
		"SELECT id, name, description FROM projects ORDER BY sort_order, rowid"); err != nil {
		return Data{}, fmt.Errorf("querying seed projects: %w", err)
	}
	if err := db.SelectContext(ctx, &data.Tasks,
		"SELECT id, project_id, title, status, created_at FROM tasks ORDER BY sort_order, rowid"); err != nil {
		return Data{}, fmt.Errorf("querying seed tasks: %w", err)
	}

	return data, nil
}

// WriteSQLite creates (or extends) a seed database at path holding data.
// Records keep the order they have in data.
func WriteSQLite(ctx context.Context, path string, data Data) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	projectStmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO projects (id, name, description, sort_order)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing project insert: %w", err)
	}
	defer projectStmt.Close()

	for i, p := range data.Projects {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, err := projectStmt.ExecContext(ctx, p.ID, p.Name, p.Description, i+1); err != nil {
			return fmt.Errorf("inserting project %s: %w", p.ID, err)
		}
	}

	taskStmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO tasks (id, project_id, title, status, created_at, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer taskStmt.Close()

	for i, t := range data.Tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if _, err := taskStmt.ExecContext(ctx,
			t.ID, t.ProjectID, t.Title, string(t.Status), t.CreatedAt.UTC(), i+1,
		); err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// openSQLite opens the database at path, creating the file if needed.
func openSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite db %s: %w", path, err)
	}

	return db, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func runMigrations(db *sqlx.DB) error {
	currentVersion := 0

	var tableCount int
	err := db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}
