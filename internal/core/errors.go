package core

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestInit reports that an operation could not be built from its parameters.
	ErrRequestInit = errors.New("request init failed")
	// ErrObjectInit reports that a required entity could not be constructed.
	ErrObjectInit = errors.New("object init failed")
	// ErrShapeMismatch reports a payload that is not the JSON shape its parser requires.
	ErrShapeMismatch = errors.New("payload shape mismatch")
	// ErrNotAcknowledged reports a success payload other than the success sentinel.
	ErrNotAcknowledged = errors.New("operation not acknowledged")

	// ErrNoDataInResponse is the parent of every envelope unwrapping failure.
	ErrNoDataInResponse = errors.New("no data in response")
	// ErrEmptyBody reports a reply without a body.
	ErrEmptyBody = fmt.Errorf("%w: empty body", ErrNoDataInResponse)
	// ErrMissingData reports a reply that is not JSON or has no data object.
	ErrMissingData = fmt.Errorf("%w: missing data object", ErrNoDataInResponse)
	// ErrMissingContainer reports a data object without the operation container.
	ErrMissingContainer = fmt.Errorf("%w: missing operation container", ErrNoDataInResponse)
	// ErrMissingPayload reports a container without the payload field.
	ErrMissingPayload = fmt.Errorf("%w: missing payload field", ErrNoDataInResponse)
)

// Warning records a nested entity that was skipped without failing the
// enclosing operation. Index is the position in the enclosing array, or -1.
type Warning struct {
	Entity EntityType
	Index  int
	ID     string
	Err    error
}

func (w Warning) Error() string {
	switch {
	case w.ID != "" && w.Index >= 0:
		return fmt.Sprintf("%s[%d] %s: %v", w.Entity, w.Index, w.ID, w.Err)
	case w.ID != "":
		return fmt.Sprintf("%s %s: %v", w.Entity, w.ID, w.Err)
	case w.Index >= 0:
		return fmt.Sprintf("%s[%d]: %v", w.Entity, w.Index, w.Err)
	default:
		return fmt.Sprintf("%s: %v", w.Entity, w.Err)
	}
}

func (w Warning) Unwrap() error { return w.Err }

// shapeError reports that what (an entity type or payload kind) needed a
// JSON value of kind want.
func shapeError(what any, want string, got any) error {
	return fmt.Errorf("%w: %v wants %s, got %s", ErrShapeMismatch, what, want, jsonKind(got))
}

func objectInit(err error) error {
	return fmt.Errorf("%w: %w", ErrObjectInit, err)
}

func requestInit(err error) error {
	return fmt.Errorf("%w: %w", ErrRequestInit, err)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64:
		return "integer"
	case float64:
		return "float"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// payloadID extracts the id of a raw payload object for diagnostics.
func payloadID(v any) string {
	if obj, ok := v.(map[string]any); ok {
		if id, ok := obj["id"].(string); ok {
			return id
		}
	}
	return ""
}
