// Package hash provides the CRC32-Castagnoli checksum used for data
// integrity throughout the codebase.
//
// Segment files carry a CRC32C over their meta and body sections, and S3
// uploads attach the same checksum so the service validates parts on
// arrival. CRC32C is the variant with hardware support on x86 (SSE4.2)
// and ARM (CRC extension), and is the industry standard for storage
// engines (iSCSI, Btrfs, RocksDB, LevelDB).
package hash
