package model

import "time"

// Status is the lifecycle state of a task.
type Status string

// Task status values. No transition graph is enforced between them.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses returns every known status in declaration order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// StatusNames returns the known statuses as plain strings.
func StatusNames() []string {
	statuses := Statuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Task is a unit of work belonging to a project.
type Task struct {
	// ID is the unique identifier of the task.
	ID string `json:"id" yaml:"id" db:"id"`

	// ProjectID references the owning project. It is not checked against
	// the project collection unless the task service runs in strict mode.
	ProjectID string `json:"projectId" yaml:"projectId" db:"project_id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title" yaml:"title" db:"title"`

	// Status is the current lifecycle state.
	Status Status `json:"status" yaml:"status" db:"status"`

	// CreatedAt is captured when the task is created.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt" db:"created_at"`
}
