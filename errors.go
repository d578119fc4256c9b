package rangego

import (
	"errors"
	"fmt"

	"github.com/hupe1980/rangego/search"
	"github.com/hupe1980/rangego/segment"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed engine.
	ErrClosed = errors.New("engine closed")

	// ErrInvalidRange is returned when a range expression denotes no values.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNoSegments is returned when a search runs against an index with no
	// open segments. When buffered documents are waiting for a flush, the
	// error message says so.
	ErrNoSegments = errors.New("no segments")

	// ErrNotFound is returned by First when no document matches.
	ErrNotFound = errors.New("no matching documents")
)

// ErrUnknownField indicates a query referenced a field absent from the
// index. errors.Unwrap exposes the segment-level cause.
type ErrUnknownField struct {
	Field string
	cause error
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field: %s", e.Field)
}

func (e *ErrUnknownField) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Range normalization failures.
	if errors.Is(err, search.ErrEmptyRange) {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}

	// Field resolution failures.
	var uf *segment.ErrUnknownField
	if errors.As(err, &uf) {
		return &ErrUnknownField{Field: uf.Field, cause: err}
	}

	if errors.Is(err, segment.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
