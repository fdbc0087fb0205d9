package domain

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when a payload object carries no usable id.
var ErrMissingID = errors.New("missing id")

// DecodeError reports that a payload object could not be turned into an entity.
type DecodeError struct {
	Entity EntityType
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Entity, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrNotFound is returned when a referenced entity is not cached.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
