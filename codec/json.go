package codec

import "encoding/json"

// JSON encodes with the standard library. It keeps manifests and other
// operator-facing files inspectable with ordinary tooling, at the cost
// of size and decode speed next to Msgpack.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json", the identifier stored in file headers.
func (JSON) Name() string { return "json" }
