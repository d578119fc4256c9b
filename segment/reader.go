package segment

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/codec"
	"github.com/hupe1980/rangego/docvalues"
	"github.com/hupe1980/rangego/internal/compress"
	"github.com/hupe1980/rangego/internal/hash"
	"github.com/hupe1980/rangego/model"
)

// Reader provides access to a persisted segment. Sections are decoded lazily
// on first access and cached for the reader's lifetime. All methods are safe
// for concurrent use; Close must not race in-flight accessors.
type Reader struct {
	id   model.SegmentID
	name string
	blob blobstore.Blob
	body []byte
	meta fileMeta

	cols  map[string]*column
	terms map[string]*termsDict

	closed atomic.Bool
}

type column struct {
	meta columnMeta

	once   sync.Once
	err    error
	single *docvalues.Numeric
	multi  *docvalues.SortedNumeric
}

type termsDict struct {
	meta termsMeta

	once     sync.Once
	err      error
	postings map[string]*roaring.Bitmap
	sorted   []string
}

// Open reads a segment blob and returns a reader over it. The blob's header
// and checksum are verified eagerly; columns are decoded on demand.
func Open(ctx context.Context, store blobstore.BlobStore, name string) (*Reader, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open segment %s: %w", name, err)
	}

	data, err := blobstore.ReadFull(ctx, blob)
	if err != nil {
		blob.Close()
		return nil, fmt.Errorf("read segment %s: %w", name, err)
	}

	r, err := newReader(blob, name, data)
	if err != nil {
		blob.Close()
		return nil, fmt.Errorf("segment %s: %w", name, err)
	}
	return r, nil
}

func newReader(blob blobstore.Blob, name string, data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	if magic := binary.LittleEndian.Uint32(data[0:]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: %#08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}
	checksum := binary.LittleEndian.Uint32(data[8:])
	metaLen := binary.LittleEndian.Uint32(data[12:])
	if uint64(headerSize)+uint64(metaLen) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: meta extends beyond file", ErrCorrupt)
	}
	if actual := hash.CRC32C(data[headerSize:]); actual != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch (stored %#08x, computed %#08x)", ErrCorrupt, checksum, actual)
	}

	metaBlock := data[headerSize : headerSize+int(metaLen)]
	if len(metaBlock) < 1 {
		return nil, fmt.Errorf("%w: empty meta block", ErrCorrupt)
	}
	nameLen := int(metaBlock[0])
	if 1+nameLen > len(metaBlock) {
		return nil, fmt.Errorf("%w: codec name extends beyond meta", ErrCorrupt)
	}
	codecName := string(metaBlock[1 : 1+nameLen])
	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrCorrupt, codecName)
	}

	var meta fileMeta
	if err := c.Unmarshal(metaBlock[1+nameLen:], &meta); err != nil {
		return nil, fmt.Errorf("%w: decode meta: %s", ErrCorrupt, err)
	}

	body := data[headerSize+int(metaLen):]

	r := &Reader{
		id:    model.SegmentID(meta.SegmentID),
		name:  name,
		blob:  blob,
		body:  body,
		meta:  meta,
		cols:  make(map[string]*column, len(meta.Columns)),
		terms: make(map[string]*termsDict, len(meta.Terms)),
	}

	for i := range meta.Columns {
		cm := meta.Columns[i]
		if cm.Offset+cm.Length > uint64(len(body)) {
			return nil, fmt.Errorf("%w: column %s extends beyond body", ErrCorrupt, cm.Info.Field)
		}
		r.cols[cm.Info.Field] = &column{meta: cm}
	}
	for i := range meta.Terms {
		tm := meta.Terms[i]
		if tm.Offset+tm.Length > uint64(len(body)) {
			return nil, fmt.Errorf("%w: terms %s extend beyond body", ErrCorrupt, tm.Field)
		}
		r.terms[tm.Field] = &termsDict{meta: tm}
	}

	return r, nil
}

// ID returns the segment's ID.
func (r *Reader) ID() model.SegmentID {
	return r.id
}

// Name returns the blob name the segment was opened from.
func (r *Reader) Name() string {
	return r.name
}

// MaxDoc returns the number of documents in the segment. Doc IDs are dense
// in [0, MaxDoc).
func (r *Reader) MaxDoc() uint32 {
	return r.meta.NumDocs
}

// Size returns the on-disk size of the segment in bytes.
func (r *Reader) Size() int64 {
	return r.blob.Size()
}

// NumericFields returns the segment's numeric field names in sorted order.
func (r *Reader) NumericFields() []string {
	fields := make([]string, 0, len(r.meta.Columns))
	for i := range r.meta.Columns {
		fields = append(fields, r.meta.Columns[i].Info.Field)
	}
	return fields
}

// TermFields returns the segment's term field names in sorted order.
func (r *Reader) TermFields() []string {
	fields := make([]string, 0, len(r.meta.Terms))
	for i := range r.meta.Terms {
		fields = append(fields, r.meta.Terms[i].Field)
	}
	return fields
}

// FieldInfo returns the stored descriptor for a numeric field.
func (r *Reader) FieldInfo(field string) (FieldInfo, bool) {
	col, ok := r.cols[field]
	if !ok {
		return FieldInfo{}, false
	}
	return col.meta.Info, true
}

// FieldStats returns the min/max statistics for a numeric field.
func (r *Reader) FieldStats(field string) (FieldStats, bool) {
	info, ok := r.FieldInfo(field)
	if !ok {
		return FieldStats{}, false
	}
	return info.Stats, true
}

// NumericValues returns a fresh cursor over a single-valued column.
// Multi-valued columns must be read through SortedNumericValues.
func (r *Reader) NumericValues(field string) (docvalues.Values, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	col, ok := r.cols[field]
	if !ok {
		return nil, &ErrUnknownField{Field: field}
	}
	if col.meta.Info.Multi {
		return nil, fmt.Errorf("%w: %s is multi-valued", ErrFieldShape, field)
	}
	if err := col.load(r); err != nil {
		return nil, err
	}
	return col.single.Iterator(), nil
}

// SortedNumericValues returns a fresh cursor over a column's values, one or
// more per document. Single-valued columns are adapted transparently.
func (r *Reader) SortedNumericValues(field string) (docvalues.MultiValues, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	col, ok := r.cols[field]
	if !ok {
		return nil, &ErrUnknownField{Field: field}
	}
	if err := col.load(r); err != nil {
		return nil, err
	}
	if col.meta.Info.Multi {
		return col.multi.Iterator(), nil
	}
	return docvalues.Singleton(col.single.Iterator()), nil
}

// Postings returns the doc IDs carrying the given term. It returns
// (nil, nil) when the field or term is absent; absence is not an error on
// the query path.
func (r *Reader) Postings(field, term string) (*roaring.Bitmap, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	td, ok := r.terms[field]
	if !ok {
		return nil, nil
	}
	if err := td.load(r); err != nil {
		return nil, err
	}
	return td.postings[term], nil
}

// Terms returns a term field's distinct terms in sorted order.
func (r *Reader) Terms(field string) ([]string, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	td, ok := r.terms[field]
	if !ok {
		return nil, &ErrUnknownField{Field: field}
	}
	if err := td.load(r); err != nil {
		return nil, err
	}
	return td.sorted, nil
}

// Close releases the underlying blob. The reader must not be used afterwards.
func (r *Reader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.blob.Close()
}

func (r *Reader) section(offset, length uint64, comp uint8) ([]byte, error) {
	return compress.DecompressAll(r.body[offset:offset+length], 0, compress.Type(comp))
}

func (c *column) load(r *Reader) error {
	c.once.Do(func() {
		raw, err := r.section(c.meta.Offset, c.meta.Length, c.meta.Compression)
		if err != nil {
			c.err = fmt.Errorf("%w: column %s: %s", ErrCorrupt, c.meta.Info.Field, err)
			return
		}
		if c.meta.Info.Multi {
			c.multi, err = docvalues.DecodeSortedNumeric(raw)
		} else {
			c.single, err = docvalues.DecodeNumeric(raw)
		}
		if err != nil {
			c.err = fmt.Errorf("%w: column %s: %s", ErrCorrupt, c.meta.Info.Field, err)
		}
	})
	return c.err
}

func (t *termsDict) load(r *Reader) error {
	t.once.Do(func() {
		raw, err := r.section(t.meta.Offset, t.meta.Length, t.meta.Compression)
		if err != nil {
			t.err = fmt.Errorf("%w: terms %s: %s", ErrCorrupt, t.meta.Field, err)
			return
		}
		postings, sorted, err := decodeTerms(raw)
		if err != nil {
			t.err = fmt.Errorf("%w: terms %s: %s", ErrCorrupt, t.meta.Field, err)
			return
		}
		t.postings = postings
		t.sorted = sorted
	})
	return t.err
}

func decodeTerms(data []byte) (map[string]*roaring.Bitmap, []string, error) {
	count, off := binary.Uvarint(data)
	if off <= 0 {
		return nil, nil, fmt.Errorf("bad term count")
	}
	postings := make(map[string]*roaring.Bitmap, count)
	sorted := make([]string, 0, count)
	pos := off
	for i := uint64(0); i < count; i++ {
		tlen, n := binary.Uvarint(data[pos:])
		if n <= 0 || pos+n+int(tlen) > len(data) {
			return nil, nil, fmt.Errorf("bad term length")
		}
		pos += n
		term := string(data[pos : pos+int(tlen)])
		pos += int(tlen)

		plen, n := binary.Uvarint(data[pos:])
		if n <= 0 || pos+n+int(plen) > len(data) {
			return nil, nil, fmt.Errorf("bad postings length")
		}
		pos += n
		bm := roaring.New()
		if _, err := bm.FromBuffer(data[pos : pos+int(plen)]); err != nil {
			return nil, nil, fmt.Errorf("decode postings for %q: %w", term, err)
		}
		pos += int(plen)

		postings[term] = bm
		sorted = append(sorted, term)
	}
	return postings, sorted, nil
}
