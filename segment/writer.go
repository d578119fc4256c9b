package segment

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/rangego/codec"
	"github.com/hupe1980/rangego/docvalues"
	"github.com/hupe1980/rangego/internal/compress"
	"github.com/hupe1980/rangego/internal/hash"
)

const (
	MagicNumber = 0x52474456 // "RGDV"
	Version     = 1

	// Fixed header: Magic, Version, Checksum, MetaLen.
	headerSize = 16
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
)

// fileMeta describes the segment body. It is stored codec-encoded behind the
// fixed header; all offsets are relative to the start of the body.
type fileMeta struct {
	SegmentID uint64       `json:"segment_id"`
	NumDocs   uint32       `json:"num_docs"`
	Columns   []columnMeta `json:"columns"`
	Terms     []termsMeta  `json:"terms"`
}

type columnMeta struct {
	Info        FieldInfo `json:"info"`
	Compression uint8     `json:"compression"`
	Offset      uint64    `json:"offset"`
	Length      uint64    `json:"length"`
}

type termsMeta struct {
	Field       string `json:"field"`
	TermCount   uint32 `json:"term_count"`
	Compression uint8  `json:"compression"`
	Offset      uint64 `json:"offset"`
	Length      uint64 `json:"length"`
}

// WriteOptions configures segment serialization.
type WriteOptions struct {
	// Codec encodes the meta block. Nil selects codec.Default.
	Codec codec.Codec

	// Compression applies to all column and term sections.
	Compression Compression
}

// Write serializes the builder's contents to w. The builder must not be
// modified afterwards. The context is checked between sections so large
// flushes can be cancelled.
func (b *Builder) Write(ctx context.Context, w io.Writer, opts WriteOptions) error {
	c := opts.Codec
	if c == nil {
		c = codec.Default
	}

	meta := fileMeta{
		SegmentID: uint64(b.id),
		NumDocs:   b.numDocs,
	}

	var body bytes.Buffer

	appendSection := func(raw []byte) (offset, length uint64, err error) {
		start := body.Len()
		bw := compress.NewBlockWriter(&body, opts.Compression, 0)
		if _, err := bw.Write(raw); err != nil {
			return 0, 0, err
		}
		if err := bw.Flush(); err != nil {
			return 0, 0, err
		}
		return uint64(start), uint64(body.Len() - start), nil
	}

	for _, field := range b.NumericFields() {
		if err := ctx.Err(); err != nil {
			return err
		}
		acc := b.numerics[field]

		var (
			raw  []byte
			info FieldInfo
		)
		if acc.multi {
			col, err := buildSorted(acc)
			if err != nil {
				return err
			}
			raw = col.AppendTo(nil)
			minv, maxv, _ := col.MinMax()
			info = FieldInfo{
				Field:    field,
				Multi:    true,
				DocCount: uint32(col.DocCount()),
				Stats:    FieldStats{Min: minv, Max: maxv},
			}
		} else {
			col, err := buildNumeric(acc)
			if err != nil {
				return err
			}
			raw = col.AppendTo(nil)
			minv, maxv, _ := col.MinMax()
			info = FieldInfo{
				Field:    field,
				DocCount: uint32(col.DocCount()),
				Stats:    FieldStats{Min: minv, Max: maxv},
			}
		}

		off, n, err := appendSection(raw)
		if err != nil {
			return err
		}
		meta.Columns = append(meta.Columns, columnMeta{
			Info:        info,
			Compression: uint8(opts.Compression),
			Offset:      off,
			Length:      n,
		})
	}

	for _, field := range b.TermFields() {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, count, err := encodeTerms(b.terms[field])
		if err != nil {
			return err
		}
		off, n, err := appendSection(raw)
		if err != nil {
			return err
		}
		meta.Terms = append(meta.Terms, termsMeta{
			Field:       field,
			TermCount:   count,
			Compression: uint8(opts.Compression),
			Offset:      off,
			Length:      n,
		})
	}

	metaBytes, err := c.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode segment meta: %w", err)
	}
	name := c.Name()
	if len(name) > 255 {
		return fmt.Errorf("codec name too long: %s", name)
	}

	metaBlock := make([]byte, 0, 1+len(name)+len(metaBytes))
	metaBlock = append(metaBlock, byte(len(name)))
	metaBlock = append(metaBlock, name...)
	metaBlock = append(metaBlock, metaBytes...)

	crc := hash.NewCRC32C()
	crc.Write(metaBlock)
	crc.Write(body.Bytes())

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], MagicNumber)
	binary.LittleEndian.PutUint32(header[4:], Version)
	binary.LittleEndian.PutUint32(header[8:], crc.Sum32())
	binary.LittleEndian.PutUint32(header[12:], uint32(len(metaBlock)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(metaBlock); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	return nil
}

// buildNumeric converts a single-valued accumulator into its column form.
func buildNumeric(acc *fieldAccumulator) (*docvalues.Numeric, error) {
	nb := docvalues.NewNumericBuilder()
	for i, doc := range acc.docs {
		if err := nb.Add(doc, acc.vals[acc.offsets[i]]); err != nil {
			return nil, err
		}
	}
	return nb.Build(), nil
}

// buildSorted converts a multi-valued accumulator into its column form.
// Values are sorted per document.
func buildSorted(acc *fieldAccumulator) (*docvalues.SortedNumeric, error) {
	sb := docvalues.NewSortedNumericBuilder()
	for i, doc := range acc.docs {
		vals := acc.vals[acc.offsets[i]:acc.offsets[i+1]]
		sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
		if err := sb.Add(doc, vals...); err != nil {
			return nil, err
		}
	}
	return sb.Build(), nil
}

// encodeTerms serializes a field's term dictionary: a term count followed by
// (term, postings) pairs in term order.
func encodeTerms(postings map[string]*roaring.Bitmap) ([]byte, uint32, error) {
	terms := make([]string, 0, len(postings))
	for t := range postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	buf := binary.AppendUvarint(nil, uint64(len(terms)))
	for _, t := range terms {
		bm := postings[t]
		bm.RunOptimize()
		pb, err := bm.ToBytes()
		if err != nil {
			return nil, 0, err
		}
		buf = binary.AppendUvarint(buf, uint64(len(t)))
		buf = append(buf, t...)
		buf = binary.AppendUvarint(buf, uint64(len(pb)))
		buf = append(buf, pb...)
	}
	return buf, uint32(len(terms)), nil
}
