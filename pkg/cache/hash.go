package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns "kind:<sha256>" over the JSON encoding of parts, one
// value per line. Key option structs have fixed field order, so equal
// documents solved with equal options always map to the same key.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			// unencodable parts still change the key
			h.Write([]byte(err.Error()))
		}
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Documents are hashed in their
// canonical encoding, so formatting differences in the input never cause a
// cache miss.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
