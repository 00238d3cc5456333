// Package errors defines the sentinel errors shared by the index, the
// document stores and the ingestion pipeline, plus an AppError wrapper that
// attaches a human readable message to a sentinel.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the only recoverable error category of the core. The
	// more specific sentinels below wrap it.
	ErrNotFound = errors.New("not found")

	ErrTermNotFound     = fmt.Errorf("term %w", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)

	ErrInvalidInput = errors.New("invalid input")
	ErrBackend      = errors.New("storage backend failure")
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Newf attaches a formatted message to sentinel. errors.Is still matches
// the sentinel.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsNotFound reports whether err belongs to the NotFound category.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
