package utils

import (
	"encoding/json"
)

// MetadataToString converts a metadata map to a JSON string (safe for a text column).
func MetadataToString(meta map[string]any) string {
	if len(meta) == 0 {
		return "{}"
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// StringToMetadata converts a stored JSON string back to a map. Invalid JSON
// yields an empty map.
func StringToMetadata(s string) map[string]any {
	out := map[string]any{}
	if s == "" || s == "{}" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return map[string]any{}
	}
	return out
}
