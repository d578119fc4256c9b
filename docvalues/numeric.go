package docvalues

import (
	"encoding/binary"
	"fmt"
)

// Numeric is an immutable single-valued numeric column: at most one int64
// per document, stored as parallel docID/value slices sorted by docID.
type Numeric struct {
	docs []uint32
	vals []int64
}

// NumericBuilder accumulates a single-valued column in docID order.
type NumericBuilder struct {
	docs []uint32
	vals []int64
}

// NewNumericBuilder creates an empty builder.
func NewNumericBuilder() *NumericBuilder {
	return &NumericBuilder{}
}

// Add records the value for docID. Documents must be added in strictly
// ascending docID order; a document without a value is simply skipped.
func (b *NumericBuilder) Add(docID uint32, v int64) error {
	if n := len(b.docs); n > 0 && b.docs[n-1] >= docID {
		return fmt.Errorf("%w: doc %d after doc %d", ErrOutOfOrder, docID, b.docs[n-1])
	}
	b.docs = append(b.docs, docID)
	b.vals = append(b.vals, v)
	return nil
}

// Build finalizes the column. The builder must not be reused afterwards.
func (b *NumericBuilder) Build() *Numeric {
	return &Numeric{docs: b.docs, vals: b.vals}
}

// DocCount returns the number of documents carrying a value.
func (n *Numeric) DocCount() int {
	return len(n.docs)
}

// MinMax returns the smallest and largest value in the column.
// ok is false for an empty column.
func (n *Numeric) MinMax() (minVal, maxVal int64, ok bool) {
	if len(n.vals) == 0 {
		return 0, 0, false
	}
	minVal, maxVal = n.vals[0], n.vals[0]
	for _, v := range n.vals[1:] {
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
func (n *Numeric) Iterator() Values {
	return &numericCursor{col: n}
}

type numericCursor struct {
	col   *Numeric
	pos   int
	valid bool
}

func (c *numericCursor) AdvanceExact(docID uint32) (bool, error) {
	docs := c.col.docs
	for c.pos < len(docs) && docs[c.pos] < docID {
		c.pos++
	}
	if c.pos < len(docs) && docs[c.pos] == docID {
		c.valid = true
		return true, nil
	}
	c.valid = false
	return false, nil
}

func (c *numericCursor) Value() (int64, error) {
	if !c.valid {
		return 0, ErrNoValue
	}
	return c.col.vals[c.pos], nil
}

// AppendTo appends the column's wire form to buf: a doc count, delta-encoded
// docIDs and zigzag-encoded values, all as uvarints.
func (n *Numeric) AppendTo(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(n.docs)))
	prev := uint32(0)
	for i, d := range n.docs {
		delta := uint64(d)
		if i > 0 {
			delta = uint64(d - prev)
		}
		buf = binary.AppendUvarint(buf, delta)
		prev = d
	}
	for _, v := range n.vals {
		buf = binary.AppendVarint(buf, v)
	}
	return buf
}

// DecodeNumeric decodes a column from its wire form.
func DecodeNumeric(data []byte) (*Numeric, error) {
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
	vals := make([]int64, count)
	for i := range vals {
		v, n, err := readVarint(data, off)
		if err != nil {
			return nil, err
		}
		off = n
		vals[i] = v
	}
	return &Numeric{docs: docs, vals: vals}, nil
}

func readUvarint(data []byte, off int) (uint64, int, error) {
	v, n := binary.Uvarint(data[off:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: truncated uvarint", ErrCorruptColumn)
	}
	return v, off + n, nil
}

func readVarint(data []byte, off int) (int64, int, error) {
	v, n := binary.Varint(data[off:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: truncated varint", ErrCorruptColumn)
	}
	return v, off + n, nil
}
