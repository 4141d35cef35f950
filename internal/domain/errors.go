package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the only domain error the catalog raises.
var ErrNotFound = errors.New("not found")

// NotFoundError names the missing resource; it unwraps to ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Resource, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
