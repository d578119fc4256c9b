// Package model holds the types shared by the engine, the segment format,
// and the search path.
//
// A Document is the ingestion-time record: numeric fields holding one or
// more int64 values, and term fields holding string terms. Documents are
// built fluently:
//
//	doc := model.NewDocument().
//	    WithNumeric("price", 1299).
//	    WithTerm("category", "laptop").
//	    Build()
//
// Once indexed, a document is addressed by a Location: the SegmentID of the
// segment holding it plus its dense, segment-local DocID. DocIDs are
// assigned in ingestion order and never reused, so per-segment match
// results come back naturally sorted.
package model
