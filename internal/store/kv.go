package store

import (
	"context"
	"encoding/json"
)

// SchemaVersion is written into every record envelope. Readers accept older
// envelopes and bare payloads written before versioning existed.
const SchemaVersion = 1

// KV is the keyed persistence area backing the post and connection stores.
// Get returns (nil, nil) when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type record struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func encodeRecord(payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{Version: SchemaVersion, Data: data})
}

// decodeRecord unwraps a stored envelope into the raw payload. A blob without
// an envelope (or with an envelope missing its data field) is treated as a
// version-0 bare payload rather than rejected.
func decodeRecord(raw []byte) json.RawMessage {
	var rec record
	if err := json.Unmarshal(raw, &rec); err == nil && rec.Data != nil {
		return rec.Data
	}
	return raw
}
