// Package docvalues provides columnar access to per-document numeric values.
//
// Columns are immutable and ordered by document ID. Readers obtain forward
// cursors over a column; a cursor is positioned with AdvanceExact and read
// with Value (single-valued) or Count/Next (multi-valued). Cursors are
// single-use and not safe for concurrent access.
package docvalues

import "errors"

var (
	// ErrNoValue is returned when a cursor value is read without a
	// preceding successful AdvanceExact, or past the document's value count.
	ErrNoValue = errors.New("no value at current position")

	// ErrOutOfOrder is returned when documents are added to a column
	// builder with non-ascending document IDs.
	ErrOutOfOrder = errors.New("doc IDs must be added in ascending order")

	// ErrCorruptColumn is returned when persisted column bytes cannot be
	// decoded.
	ErrCorruptColumn = errors.New("corrupt column data")
)

// Values is a forward cursor over a single-valued numeric column.
type Values interface {
	// AdvanceExact positions the cursor on docID and reports whether the
	// document has a value. Target docIDs must be non-decreasing across
	// calls on the same cursor.
	AdvanceExact(docID uint32) (bool, error)

	// Value returns the current document's value. It is only valid after
	// a successful AdvanceExact.
	Value() (int64, error)
}

// MultiValues is a forward cursor over a multi-valued numeric column.
type MultiValues interface {
	// AdvanceExact positions the cursor on docID and reports whether the
	// document has at least one value. Target docIDs must be
	// non-decreasing across calls on the same cursor.
	AdvanceExact(docID uint32) (bool, error)

	// Count returns the number of values for the current document.
	// It is only valid after a successful AdvanceExact.
	Count() int

	// Next returns the next of the current document's values in stored
	// order. After a successful AdvanceExact, exactly Count calls yield
	// the document's values.
	Next() (int64, error)
}
