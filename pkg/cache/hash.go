package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Layout and artifact keys are derived
// from the hash of the canonical JSON of their input, so identical records
// share cache entries regardless of where they were loaded from.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "kind:" followed by the hash of the JSON-encoded parts.
// Option structs carry json tags, so field order is fixed.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
