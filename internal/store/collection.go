package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrDuplicateID is returned when a record is inserted with an id that is
// already present in its collection.
var ErrDuplicateID = errors.New("duplicate id")

// Collection is an insertion-ordered set of records keyed by id.
// It is not safe for concurrent use; Store serializes access to it.
type Collection[T any] struct {
	items []T
	index map[string]int
	idOf  func(*T) *string
}

// NewCollection creates an empty collection. idOf must return a pointer to
// the record's id field so Insert can fill it in.
func NewCollection[T any](idOf func(*T) *string) *Collection[T] {
	return &Collection[T]{
		index: make(map[string]int),
		idOf:  idOf,
	}
}

// Insert appends item, generating a UUID if its id is empty.
func (c *Collection[T]) Insert(item T) (T, error) {
	id := c.idOf(&item)
	if *id == "" {
		*id = uuid.New().String()
	}
	if _, exists := c.index[*id]; exists {
		var zero T
		return zero, fmt.Errorf("inserting %s: %w", *id, ErrDuplicateID)
	}

	c.index[*id] = len(c.items)
	c.items = append(c.items, item)
	return item, nil
}

// All returns a copy of every record in insertion order.
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the record with the given id.
func (c *Collection[T]) Find(id string) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Filter returns, in insertion order, every record for which match is true.
// The result is never nil.
func (c *Collection[T]) Filter(match func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range c.items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Update applies fn to the stored record in place and returns the result.
// fn must not change the id.
func (c *Collection[T]) Update(id string, fn func(*T)) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	fn(&c.items[i])
	*c.idOf(&c.items[i]) = id
	return c.items[i], true
}

// Remove deletes the record with the given id and returns it.
// Remaining records keep their relative order.
func (c *Collection[T]) Remove(id string) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}

	removed := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[*c.idOf(&c.items[j])] = j
	}
	return removed, true
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// reset drops every record.
func (c *Collection[T]) reset() {
	c.items = nil
	c.index = make(map[string]int)
}
