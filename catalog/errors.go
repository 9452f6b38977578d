package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel wrapped by all lookup misses. Callers should
// test with errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with the entity kind and id that missed.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

// Unwrap makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
