package docvalues

import (
	"encoding/binary"
	"fmt"
)

// SortedNumeric is an immutable multi-valued numeric column: zero or more
// int64 values per document, flattened with per-document offsets.
type SortedNumeric struct {
	docs    []uint32
	offsets []uint32 // len(docs)+1; values of docs[i] live in vals[offsets[i]:offsets[i+1]]
	vals    []int64
}

// SortedNumericBuilder accumulates a multi-valued column in docID order.
type SortedNumericBuilder struct {
	docs    []uint32
	offsets []uint32
	vals    []int64
}

// NewSortedNumericBuilder creates an empty builder.
func NewSortedNumericBuilder() *SortedNumericBuilder {
	return &SortedNumericBuilder{offsets: []uint32{0}}
}

// Add records the values for docID. Documents must be added in strictly
// ascending docID order; calls with no values are ignored.
func (b *SortedNumericBuilder) Add(docID uint32, values ...int64) error {
	if len(values) == 0 {
		return nil
	}
	if n := len(b.docs); n > 0 && b.docs[n-1] >= docID {
		return fmt.Errorf("%w: doc %d after doc %d", ErrOutOfOrder, docID, b.docs[n-1])
	}
	b.docs = append(b.docs, docID)
	b.vals = append(b.vals, values...)
	b.offsets = append(b.offsets, uint32(len(b.vals)))
	return nil
}

// Build finalizes the column. The builder must not be reused afterwards.
func (b *SortedNumericBuilder) Build() *SortedNumeric {
	return &SortedNumeric{docs: b.docs, offsets: b.offsets, vals: b.vals}
}

// DocCount returns the number of documents carrying at least one value.
func (s *SortedNumeric) DocCount() int {
	return len(s.docs)
}

// MinMax returns the smallest and largest value in the column.
// ok is false for an empty column.
func (s *SortedNumeric) MinMax() (minVal, maxVal int64, ok bool) {
	if len(s.vals) == 0 {
		return 0, 0, false
	}
	minVal, maxVal = s.vals[0], s.vals[0]
	for _, v := range s.vals[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal, true
}

// Iterator returns a fresh forward cursor over the column.
func (s *SortedNumeric) Iterator() MultiValues {
	return &sortedCursor{col: s}
}

type sortedCursor struct {
	col   *SortedNumeric
	pos   int
	next  uint32
	end   uint32
	valid bool
}

func (c *sortedCursor) AdvanceExact(docID uint32) (bool, error) {
	docs := c.col.docs
	for c.pos < len(docs) && docs[c.pos] < docID {
		c.pos++
	}
	if c.pos < len(docs) && docs[c.pos] == docID {
		c.valid = true
		c.next = c.col.offsets[c.pos]
		c.end = c.col.offsets[c.pos+1]
		return true, nil
	}
	c.valid = false
	return false, nil
}

func (c *sortedCursor) Count() int {
	if !c.valid {
		return 0
	}
	return int(c.end - c.col.offsets[c.pos])
}

func (c *sortedCursor) Next() (int64, error) {
	if !c.valid || c.next >= c.end {
		return 0, ErrNoValue
	}
	v := c.col.vals[c.next]
	c.next++
	return v, nil
}

// AppendTo appends the column's wire form to buf: a doc count, delta-encoded
// docIDs, per-document value counts, and zigzag-encoded values.
func (s *SortedNumeric) AppendTo(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s.docs)))
	prev := uint32(0)
	for i, d := range s.docs {
		delta := uint64(d)
		if i > 0 {
			delta = uint64(d - prev)
		}
		buf = binary.AppendUvarint(buf, delta)
		prev = d
	}
	for i := range s.docs {
		buf = binary.AppendUvarint(buf, uint64(s.offsets[i+1]-s.offsets[i]))
	}
	for _, v := range s.vals {
		buf = binary.AppendVarint(buf, v)
	}
	return buf
}

// DecodeSortedNumeric decodes a column from its wire form.
func DecodeSortedNumeric(data []byte) (*SortedNumeric, error) {
	count, off, err := readUvarint(data, 0)
	if err != nil {
		return nil, err
	}
	docs := make([]uint32, count)
	prev := uint64(0)
	for i := range docs {
		delta, n, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off = n
		if i == 0 {
			prev = delta
		} else {
			prev += delta
		}
		if prev > uint64(^uint32(0)) {
			return nil, fmt.Errorf("%w: doc ID overflow", ErrCorruptColumn)
		}
		docs[i] = uint32(prev)
	}
	offsets := make([]uint32, count+1)
	total := uint64(0)
	for i := uint64(0); i < count; i++ {
		c, n, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off = n
		if c == 0 {
			return nil, fmt.Errorf("%w: zero value count for doc %d", ErrCorruptColumn, docs[i])
		}
		total += c
		if total > uint64(^uint32(0)) {
			return nil, fmt.Errorf("%w: value offset overflow", ErrCorruptColumn)
		}
		offsets[i+1] = uint32(total)
	}
	vals := make([]int64, total)
	for i := range vals {
		v, n, err := readVarint(data, off)
		if err != nil {
			return nil, err
		}
		off = n
		vals[i] = v
	}
	return &SortedNumeric{docs: docs, offsets: offsets, vals: vals}, nil
}
