package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/apperr"
	"github.com/nhle/taskboard/internal/metrics"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// TaskInput holds the fields accepted when creating a task. A zero Status
// means pending and a zero CreatedAt means now.
type TaskInput struct {
	ProjectID string
	Title     string
	Status    model.Status
	CreatedAt time.Time
}

// TaskOptions tunes how strictly the task service checks its input.
type TaskOptions struct {
	// RequireProject rejects tasks whose project does not exist.
	RequireProject bool

	// StrictStatus rejects status updates outside the known statuses.
	// When false the value is committed as given.
	StrictStatus bool

	// Now stamps CreatedAt. Defaults to time.Now.
	Now func() time.Time
}

// TaskService manages tasks.
type TaskService struct {
	store   *store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	opts    TaskOptions
}

// NewTaskService returns a task service backed by st. logger and m may be nil.
func NewTaskService(st *store.Store, logger *zap.Logger, m *metrics.Metrics, opts TaskOptions) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TaskService{store: st, logger: logger, metrics: m, opts: opts}
}

// CreateTask stores a new task with a generated id.
func (s *TaskService) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Task{}, apperr.Validation("title is required")
	}

	t := model.Task{
		ProjectID: in.ProjectID,
		Title:     in.Title,
		Status:    in.Status,
		CreatedAt: in.CreatedAt,
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.opts.Now().UTC()
	}

	created, err := s.store.InsertTask(t, s.opts.RequireProject)
	if errors.Is(err, store.ErrUnknownProject) {
		return model.Task{}, apperr.NotFound("Project not found")
	}
	if err != nil {
		return model.Task{}, apperr.Internal(err)
	}

	s.metrics.TaskCreated()
	s.logger.Debug("task created",
		zap.String("task_id", created.ID),
		zap.String("project_id", created.ProjectID),
	)
	return created, nil
}

// ListTasksByProject returns the tasks of a project in insertion order.
// The result is empty, never nil, when nothing matches.
func (s *TaskService) ListTasksByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	if projectID == "" {
		return nil, apperr.Validation("projectId is required")
	}
	return s.store.FilterTasks(func(t model.Task) bool {
		return t.ProjectID == projectID
	}), nil
}

// GetTaskByID looks up a task. Absence is reported through ok, not an error.
func (s *TaskService) GetTaskByID(ctx context.Context, id string) (model.Task, bool) {
	return s.store.FindTask(id)
}

// UpdateTaskStatus sets the status of a task and returns the updated task.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	if s.opts.StrictStatus && !status.Valid() {
		return model.Task{}, apperr.Validation(
			"status must be one of " + strings.Join(model.StatusNames(), ", "))
	}

	t, ok := s.store.UpdateTask(id, func(t *model.Task) {
		t.Status = status
	})
	if !ok {
		return model.Task{}, apperr.NotFound("Task not found")
	}

	s.metrics.TaskStatusUpdated(string(status))
	s.logger.Debug("task status updated",
		zap.String("task_id", t.ID),
		zap.String("status", string(status)),
	)
	return t, nil
}

// DeleteTask removes a task permanently and returns it.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (model.Task, error) {
	t, ok := s.store.RemoveTask(id)
	if !ok {
		return model.Task{}, apperr.NotFound("Task not found")
	}

	s.metrics.TaskDeleted()
	s.logger.Debug("task deleted", zap.String("task_id", t.ID))
	return t, nil
}
