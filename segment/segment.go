package segment

import (
	"errors"
	"fmt"

	"github.com/hupe1980/rangego/internal/compress"
	"github.com/hupe1980/rangego/model"
)

// Compression selects the block compression applied to segment sections.
type Compression = compress.Type

const (
	// CompressionNone stores sections uncompressed.
	CompressionNone = compress.None
	// CompressionLZ4 trades a little ratio for fast decompression.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD gives the best ratio at a higher CPU cost.
	CompressionZSTD = compress.ZSTD
)

var (
	// ErrClosed is returned when a reader is used after Close.
	ErrClosed = errors.New("segment closed")

	// ErrCorrupt is returned when a segment fails structural validation
	// (bad magic, checksum mismatch, truncated sections).
	ErrCorrupt = errors.New("corrupt segment")

	// ErrFieldShape is returned when a field is accessed through the wrong
	// accessor (single-valued accessor on a multi-valued column or vice versa).
	ErrFieldShape = errors.New("wrong field shape")
)

// ErrUnknownField indicates an access to a field the segment does not carry.
type ErrUnknownField struct {
	Field string
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field: %s", e.Field)
}

// FieldStats stores the smallest and largest value of a numeric field.
type FieldStats struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// FieldInfo describes a numeric field as stored in a segment.
type FieldInfo struct {
	Field string `json:"field"`

	// Multi reports whether the column stores more than one value for at
	// least one document. Single-valued columns use the cheaper accessor
	// path even when read through SortedNumericValues.
	Multi bool `json:"multi"`

	// DocCount is the number of documents carrying at least one value.
	DocCount uint32 `json:"doc_count"`

	Stats FieldStats `json:"stats"`
}

// FileName returns the canonical blob name for a segment.
func FileName(id model.SegmentID) string {
	return fmt.Sprintf("%06d.seg", uint64(id))
}
