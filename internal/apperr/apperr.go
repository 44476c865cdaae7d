// Package apperr defines the error taxonomy shared by the catalog, cart and
// contact layers and a classifier the HTTP layer switches on.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// NotFound wraps ErrNotFound with the name of the missing thing.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Storage wraps an infrastructure failure. A nil err returns nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// Kind is the outcome of an operation as seen by a caller.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindValidation
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "storage"
	}
}

// KindOf classifies err. Unknown errors are treated as storage failures so
// they are never shown to the visitor as a correctable input problem.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindStorage
	}
}
