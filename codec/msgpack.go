package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is the default codec. Segment metadata is numeric-heavy, which
// msgpack encodes compactly and decodes quickly on the open path.
type Msgpack struct{}

func (Msgpack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (Msgpack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// Name returns "msgpack", the identifier stored in file headers.
func (Msgpack) Name() string { return "msgpack" }

// Default is what new files are written with. Existing files name their
// codec in the header, so changing it never breaks opens.
var Default Codec = Msgpack{}
