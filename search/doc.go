// Package search implements range filtering over numeric doc-value columns.
//
// # Overview
//
// The package follows a two-phase execution model. A query compiles into a
// per-segment scorer made of a cheap approximation (an iterator over
// candidate doc IDs) and an optional verification step that confirms each
// candidate against the column values. Range queries verify candidates by
// reading the document's values and testing them against a closed interval;
// an optional fast-match query narrows the approximation from "all
// documents" down to its own matches.
//
// # Lazy Construction
//
// Weights hand out ScorerSuppliers instead of scorers. A supplier answers
// the structural question "can this segment contain matches at all?" (a nil
// supplier means no) and defers the expensive work - resolving columns,
// realizing the fast-match scorer - until Get is called with the lead cost.
// Segments that are skipped never pay for scorer construction.
//
// # Thread Safety
//
// Queries and weights are immutable and safe for concurrent use. Scorers
// and iterators are single-goroutine; the Searcher builds one per segment
// worker.
package search
