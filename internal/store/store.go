// Package store holds the process-wide in-memory project and task
// collections.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nhle/taskboard/internal/model"
)

// ErrUnknownProject is returned by InsertTask when the caller requires the
// task's project to exist and it does not.
var ErrUnknownProject = errors.New("unknown project")

// Store owns the project and task collections.
//
// A single lock guards both collections so that every check-then-act
// sequence (id generation and insert, find and remove, find and mutate,
// and the optional task-to-project reference check) runs indivisibly.
// Every value handed out is a copy.
type Store struct {
	mu       sync.RWMutex
	projects *Collection[model.Project]
	tasks    *Collection[model.Task]
}

// New returns an empty store.
func New() *Store {
	return &Store{
		projects: NewCollection(func(p *model.Project) *string { return &p.ID }),
		tasks:    NewCollection(func(t *model.Task) *string { return &t.ID }),
	}
}

// Initialize replaces both collections with the given seed records.
// Records without an id get one generated. Calling Initialize again
// discards the previous state; it is meant to run once, before traffic.
func (s *Store) Initialize(projects []model.Project, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects.reset()
	s.tasks.reset()

	for _, p := range projects {
		if _, err := s.projects.Insert(p); err != nil {
			return fmt.Errorf("seeding project: %w", err)
		}
	}
	for _, t := range tasks {
		if _, err := s.tasks.Insert(t); err != nil {
			return fmt.Errorf("seeding task: %w", err)
		}
	}
	return nil
}

// InsertProject stores a new project, generating its id if empty.
func (s *Store) InsertProject(p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.projects.Insert(p)
}

// Projects returns every project in insertion order.
func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projects.All()
}

// FindProject looks up a project by id.
func (s *Store) FindProject(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projects.Find(id)
}

// InsertTask stores a new task, generating its id if empty. When
// requireProject is set the task's project must already exist, checked
// under the same lock as the insert.
func (s *Store) InsertTask(t model.Task, requireProject bool) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requireProject {
		if _, ok := s.projects.Find(t.ProjectID); !ok {
			return model.Task{}, fmt.Errorf("inserting task for project %q: %w", t.ProjectID, ErrUnknownProject)
		}
	}
	return s.tasks.Insert(t)
}

// Tasks returns every task in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tasks.All()
}

// FindTask looks up a task by id.
func (s *Store) FindTask(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tasks.Find(id)
}

// FilterTasks returns every task matching the predicate, in insertion order.
func (s *Store) FilterTasks(match func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tasks.Filter(match)
}

// UpdateTask mutates a stored task in place and returns the new value.
func (s *Store) UpdateTask(id string, fn func(*model.Task)) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tasks.Update(id, fn)
}

// RemoveTask deletes a task permanently and returns it.
func (s *Store) RemoveTask(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tasks.Remove(id)
}

// Counts returns the number of stored projects and tasks.
func (s *Store) Counts() (projects, tasks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projects.Len(), s.tasks.Len()
}
