package storage

import (
	"encoding/json"
	"fmt"
)

// EncodeMetadata serializes a metadata map for a JSON or TEXT column.
// A nil map is stored as an empty object.
func EncodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(data), nil
}

// DecodeMetadata is the inverse of EncodeMetadata. It never returns a nil map.
func DecodeMetadata(raw []byte) (map[string]any, error) {
	m := map[string]any{}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
