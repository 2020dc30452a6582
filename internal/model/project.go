package model

// Project is a named container that owns zero or more tasks.
// Projects are immutable once stored.
type Project struct {
	ID          string `json:"id" yaml:"id" db:"id"`
	Name        string `json:"name" yaml:"name" db:"name"`
	Description string `json:"description" yaml:"description" db:"description"`
}
