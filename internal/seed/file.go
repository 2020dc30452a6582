package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileSource reads projects and tasks from two files. The format follows
// the extension: .json, or .yaml/.yml. A missing file is treated as an
// empty list; an unreadable or malformed one is an error.
type FileSource struct {
	ProjectsPath string
	TasksPath    string
	Logger       *zap.Logger
}

// Name implements Source.
func (s FileSource) Name() string {
	return fmt.Sprintf("files:%s,%s", s.ProjectsPath, s.TasksPath)
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (Data, error) {
	var data Data
	if err := s.read(s.ProjectsPath, &data.Projects); err != nil {
		return Data{}, err
	}
	if err := s.read(s.TasksPath, &data.Tasks); err != nil {
		return Data{}, err
	}
	return data, ctx.Err()
}

func (s FileSource) read(path string, into any) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger().Warn("seed file not found", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading seed file %s: %w", path, err)
	}

	if err := decode(path, raw, into); err != nil {
		return fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return nil
}

func (s FileSource) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func decode(path string, raw []byte, into any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(raw, into)
	case ".json", "":
		return json.Unmarshal(raw, into)
	default:
		return fmt.Errorf("unsupported seed format %q", filepath.Ext(path))
	}
}

// ReadFiles is a convenience for tooling that needs the parsed records
// without a store, e.g. converting seed files into a seed database.
func ReadFiles(ctx context.Context, projectsPath, tasksPath string) (Data, error) {
	data, err := FileSource{ProjectsPath: projectsPath, TasksPath: tasksPath}.Load(ctx)
	if err != nil {
		return Data{}, err
	}
	now := time.Now().UTC()
	for i := range data.Tasks {
		applyTaskDefaults(&data.Tasks[i], now)
	}
	return data, nil
}

var (
	_ Source = FileSource{}
	_ Source = SQLiteSource{}
)
