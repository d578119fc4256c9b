// Package codec selects the serialization for persisted segment metadata.
// Files are self-describing: the codec name travels in the file header, so
// an index written with one codec opens correctly regardless of the
// engine's configured default.
package codec

// Codec serializes metadata values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Name is the stable identifier stored in file headers.
	Name() string
}

// ByName resolves a codec name read from a file header. ok is false for
// unknown names; callers treat that as an unreadable file, never as a
// fallback to the default.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "msgpack":
		return Msgpack{}, true
	default:
		return nil, false
	}
}
