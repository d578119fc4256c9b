// Package segment implements immutable columnar segments for numeric and
// term fields.
//
// # Overview
//
// A segment is the unit of storage: a batch of documents flushed into a
// single blob. Numeric fields are stored as doc-value columns (single- or
// multi-valued, decided per field at build time), term fields as small
// inverted lists backed by roaring bitmaps.
//
// # File Format
//
//	┌─────────────────────────────────────────┐
//	│ Header (16 bytes)                       │
//	│   Magic, Version, Checksum, MetaLen     │
//	├─────────────────────────────────────────┤
//	│ Meta (MetaLen bytes)                    │
//	│   codec name + codec-encoded fileMeta   │
//	├─────────────────────────────────────────┤
//	│ Column sections (block-compressed)      │
//	│   one per numeric field                 │
//	├─────────────────────────────────────────┤
//	│ Term sections (block-compressed)        │
//	│   one per term field                    │
//	└─────────────────────────────────────────┘
//
// Section offsets in the meta are relative to the start of the body (the
// first byte after the meta). The checksum is CRC32C over meta and body.
//
// # Thread Safety
//
// Builders are single-goroutine. Readers are immutable after Open and safe
// for concurrent use; column and postings decoding is lazy and guarded.
package segment
