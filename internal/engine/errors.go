package engine

import (
	"errors"
	"fmt"
)

// Error kinds returned by engine operations. They are always wrapped with
// detail; match them with errors.Is. An operation that returns one of these
// has not mutated any registry.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// Kind names the error kind of err for logs and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvalidGeometry):
		return "invalid_geometry"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
