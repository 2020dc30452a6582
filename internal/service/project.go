// Package service implements the project and task operations on top of
// the in-memory store. Operations return apperr errors; callers decide how
// to present them.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/apperr"
	"github.com/nhle/taskboard/internal/metrics"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// ProjectInput holds the fields accepted when creating a project.
// Description defaults to the empty string.
type ProjectInput struct {
	Name        string
	Description string
}

// ProjectService manages projects.
type ProjectService struct {
	store   *store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewProjectService returns a project service backed by st. logger and m
// may be nil.
func NewProjectService(st *store.Store, logger *zap.Logger, m *metrics.Metrics) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{store: st, logger: logger, metrics: m}
}

// CreateProject stores a new project with a generated id.
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (model.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Project{}, apperr.Validation("name is required")
	}

	p, err := s.store.InsertProject(model.Project{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return model.Project{}, apperr.Internal(err)
	}

	s.metrics.ProjectCreated()
	s.logger.Debug("project created", zap.String("project_id", p.ID))
	return p, nil
}

// ListProjects returns a snapshot of every project in insertion order.
func (s *ProjectService) ListProjects(ctx context.Context) []model.Project {
	return s.store.Projects()
}

// GetProject looks up a project by id.
func (s *ProjectService) GetProject(ctx context.Context, id string) (model.Project, bool) {
	return s.store.FindProject(id)
}
