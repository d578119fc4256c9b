package model

import (
	"fmt"
	"sort"
)

// SegmentID is the unique identifier for a segment within an index.
type SegmentID uint64

// DocID is a dense, segment-local document identifier.
// It is assigned in ingestion order and never reused within a segment.
type DocID uint32

// Location identifies a document in the index.
type Location struct {
	SegmentID SegmentID
	DocID     DocID
}

// String formats the location as Loc(segment:doc).
func (l Location) String() string {
	return fmt.Sprintf("Loc(%d:%d)", l.SegmentID, l.DocID)
}

// Document is an ingestion-time record: numeric fields (each holding one or
// more int64 values) and term fields (each holding one or more string terms).
type Document struct {
	Numerics map[string][]int64
	Terms    map[string][]string
}

// NumericFields returns the document's numeric field names in sorted order.
func (d *Document) NumericFields() []string {
	fields := make([]string, 0, len(d.Numerics))
	for f := range d.Numerics {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// TermFields returns the document's term field names in sorted order.
func (d *Document) TermFields() []string {
	fields := make([]string, 0, len(d.Terms))
	for f := range d.Terms {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// DocumentBuilder constructs documents with a fluent API.
type DocumentBuilder struct {
	doc Document
}

// NewDocument starts building a document.
func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{
		doc: Document{
			Numerics: make(map[string][]int64),
			Terms:    make(map[string][]string),
		},
	}
}

// WithNumeric appends numeric values to a field.
func (b *DocumentBuilder) WithNumeric(field string, values ...int64) *DocumentBuilder {
	b.doc.Numerics[field] = append(b.doc.Numerics[field], values...)
	return b
}

// WithTerm appends terms to a field.
func (b *DocumentBuilder) WithTerm(field string, terms ...string) *DocumentBuilder {
	b.doc.Terms[field] = append(b.doc.Terms[field], terms...)
	return b
}

// Build returns the assembled document.
func (b *DocumentBuilder) Build() Document {
	return b.doc
}
