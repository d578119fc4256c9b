// Package compress implements block compression for segment column sections.
//
// Each block is framed as [UncompressedSize uint32][CompressedSize uint32][Data].
// A CompressedSize of 0 marks a stored (uncompressed) block; incompressible
// blocks fall back to stored form so a section never grows past its input
// by more than the header overhead.
package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type names the compression algorithm of a section.
type Type uint8

const (
	// None stores sections as-is.
	None Type = 0
	// LZ4 favors decode speed, the default for columns touched on every
	// query.
	LZ4 Type = 1
	// ZSTD trades decode speed for ratio. Worth it for cold columns behind
	// remote storage.
	ZSTD Type = 2
)

// ErrUnknownType is returned when a section names a compression algorithm
// this build does not implement.
var ErrUnknownType = errors.New("unknown compression type")

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// zstd coders are reused across blocks; building one per block would
// dominate the cost of small sections.
var (
	zstdEncoders = sync.Pool{New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}}
	zstdDecoders = sync.Pool{New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	}}
)

const blockHeaderSize = 8

var (
	errTruncated    = errors.New("truncated block")
	errSizeMismatch = errors.New("decompressed size mismatch")
)

// CompressBlock frames data as a single block. Type None, empty input, and
// blocks that do not shrink by at least 10% are framed stored, so framing
// never costs more than the header.
func CompressBlock(data []byte, t Type) ([]byte, error) {
	payload, err := encodeBlock(data, t)
	if err != nil {
		return nil, err
	}
	if payload == nil || len(payload)*10 > len(data)*9 {
		return appendFrame(nil, uint32(len(data)), 0, data), nil
	}
	return appendFrame(nil, uint32(len(data)), uint32(len(payload)), payload), nil
}

func appendFrame(dst []byte, rawLen, compLen uint32, payload []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, rawLen)
	dst = binary.LittleEndian.AppendUint32(dst, compLen)
	return append(dst, payload...)
}

// encodeBlock returns a nil payload when the block should be stored.
func encodeBlock(data []byte, t Type) ([]byte, error) {
	switch t {
	case None:
		return nil, nil
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// lz4 reports incompressible input as a zero length.
			return nil, nil
		}
		return buf[:n], nil
	case ZSTD:
		enc := zstdEncoders.Get().(*zstd.Encoder)
		defer zstdEncoders.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

// decodeBlock inflates payload into a fresh slice of rawLen bytes.
func decodeBlock(payload []byte, rawLen uint32, t Type) ([]byte, error) {
	out := make([]byte, rawLen)
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != rawLen {
			return nil, errSizeMismatch
		}
		return out, nil
	case ZSTD:
		dec := zstdDecoders.Get().(*zstd.Decoder)
		defer zstdDecoders.Put(dec)
		decoded, err := dec.DecodeAll(payload, out[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != rawLen {
			return nil, errSizeMismatch
		}
		return decoded, nil
	case None:
		// A stored block carries CompressedSize 0 and never reaches here.
		return nil, errors.New("compressed payload in stored section")
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

// BlockWriter buffers writes into fixed-size blocks, compressing each one
// as it fills. There is no Close; Flush emits the final partial block.
type BlockWriter struct {
	w         io.Writer
	typ       Type
	blockSize int
	buf       bytes.Buffer
	written   int64
}

// NewBlockWriter emits blocks of blockSize input bytes to w. A blockSize
// of zero or less picks the 256KB default.
func NewBlockWriter(w io.Writer, t Type, blockSize int) *BlockWriter {
	if blockSize <= 0 {
		blockSize = 256 << 10
	}
	bw := &BlockWriter{w: w, typ: t, blockSize: blockSize}
	bw.buf.Grow(blockSize)
	return bw
}

// Write buffers p, emitting a block whenever the buffer fills.
func (w *BlockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if w.buf.Len() == w.blockSize {
			if err := w.flushBlock(); err != nil {
				return total, err
			}
		}
		n := min(len(p), w.blockSize-w.buf.Len())
		w.buf.Write(p[:n])
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush emits any buffered data as a final block. Writing may continue
// afterwards; the next Write starts a fresh block.
func (w *BlockWriter) Flush() error {
	return w.flushBlock()
}

func (w *BlockWriter) flushBlock() error {
	if w.buf.Len() == 0 {
		return nil
	}
	block, err := CompressBlock(w.buf.Bytes(), w.typ)
	if err != nil {
		return err
	}
	n, err := w.w.Write(block)
	w.written += int64(n)
	w.buf.Reset()
	return err
}

// BytesWritten reports compressed output bytes, headers included.
func (w *BlockWriter) BytesWritten() int64 {
	return w.written
}

// BlockReader iterates the blocks of one compressed section.
type BlockReader struct {
	rest []byte
	typ  Type
}

// NewBlockReader reads consecutive blocks from data.
func NewBlockReader(data []byte, t Type) *BlockReader {
	return &BlockReader{rest: data, typ: t}
}

// ReadBlock decompresses the next block, returning io.EOF after the last
// one. Stored blocks alias the section buffer instead of copying.
func (r *BlockReader) ReadBlock() ([]byte, error) {
	if len(r.rest) == 0 {
		return nil, io.EOF
	}
	if len(r.rest) < blockHeaderSize {
		return nil, errTruncated
	}
	rawLen := binary.LittleEndian.Uint32(r.rest)
	compLen := binary.LittleEndian.Uint32(r.rest[4:])

	length := compLen
	if compLen == 0 {
		length = rawLen
	}
	body := r.rest[blockHeaderSize:]
	if uint64(length) > uint64(len(body)) {
		return nil, errTruncated
	}
	r.rest = body[length:]

	if compLen == 0 {
		return body[:rawLen], nil
	}
	return decodeBlock(body[:compLen], rawLen, r.typ)
}

// DecompressAll inflates every block of the section starting at startOffset
// and concatenates the results.
func DecompressAll(data []byte, startOffset int64, t Type) ([]byte, error) {
	r := NewBlockReader(data[startOffset:], t)
	var out []byte
	for {
		block, err := r.ReadBlock()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
}
