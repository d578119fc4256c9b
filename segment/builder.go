package segment

import (
	"errors"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/rangego/model"
)

// ErrFull is returned when a builder has exhausted the segment-local doc ID
// space.
var ErrFull = errors.New("segment full")

// Builder accumulates documents for a new segment. Doc IDs are assigned
// densely in ingestion order. Builders are not safe for concurrent use.
type Builder struct {
	id       model.SegmentID
	numDocs  uint32
	numerics map[string]*fieldAccumulator
	terms    map[string]map[string]*roaring.Bitmap
	estSize  int64
}

type fieldAccumulator struct {
	docs    []uint32
	offsets []uint32 // len(docs)+1
	vals    []int64
	multi   bool
}

func (a *fieldAccumulator) add(docID uint32, vals []int64) {
	a.docs = append(a.docs, docID)
	a.vals = append(a.vals, vals...)
	a.offsets = append(a.offsets, uint32(len(a.vals)))
	if len(vals) > 1 {
		a.multi = true
	}
}

// NewBuilder creates a builder for the segment with the given ID.
func NewBuilder(id model.SegmentID) *Builder {
	return &Builder{
		id:       id,
		numerics: make(map[string]*fieldAccumulator),
		terms:    make(map[string]map[string]*roaring.Bitmap),
	}
}

// ID returns the segment ID the builder writes under.
func (b *Builder) ID() model.SegmentID {
	return b.id
}

// NumDocs returns the number of documents added so far.
func (b *Builder) NumDocs() uint32 {
	return b.numDocs
}

// EstimatedSize returns a rough in-memory footprint in bytes, used for
// flush decisions and memory accounting.
func (b *Builder) EstimatedSize() int64 {
	return b.estSize
}

// AddDocument appends a document and returns its segment-local doc ID.
// Fields with no values are skipped; a document may legitimately carry no
// indexed fields at all and still consume a doc ID.
func (b *Builder) AddDocument(doc model.Document) (model.DocID, error) {
	if b.numDocs == math.MaxUint32 {
		return 0, ErrFull
	}
	docID := b.numDocs

	for field, vals := range doc.Numerics {
		if len(vals) == 0 {
			continue
		}
		acc, ok := b.numerics[field]
		if !ok {
			acc = &fieldAccumulator{offsets: []uint32{0}}
			b.numerics[field] = acc
			b.estSize += int64(len(field)) + 48
		}
		acc.add(docID, vals)
		b.estSize += int64(len(vals))*9 + 5
	}

	for field, terms := range doc.Terms {
		if len(terms) == 0 {
			continue
		}
		postings, ok := b.terms[field]
		if !ok {
			postings = make(map[string]*roaring.Bitmap)
			b.terms[field] = postings
			b.estSize += int64(len(field)) + 48
		}
		for _, term := range terms {
			bm, ok := postings[term]
			if !ok {
				bm = roaring.New()
				postings[term] = bm
				b.estSize += int64(len(term)) + 64
			}
			bm.Add(docID)
		}
		b.estSize += int64(len(terms)) * 4
	}

	b.numDocs++
	return model.DocID(docID), nil
}

// NumericFields returns the numeric field names seen so far, sorted.
func (b *Builder) NumericFields() []string {
	fields := make([]string, 0, len(b.numerics))
	for f := range b.numerics {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// TermFields returns the term field names seen so far, sorted.
func (b *Builder) TermFields() []string {
	fields := make([]string, 0, len(b.terms))
	for f := range b.terms {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
