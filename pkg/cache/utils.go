package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateKey joins a namespace and an id, e.g. GenerateKey("chart", id).
func GenerateKey(namespace, id string) string {
	return namespace + ":" + id
}

// HashKey derives a fixed 32-character id from its parts, e.g. the fields of
// a preview request. Parts are separated by a unit separator so ("ab","c")
// and ("a","bc") hash differently.
func HashKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:16])
}

// BuildPattern matches every key of a namespace created by GenerateKey.
func BuildPattern(namespace string) string {
	return namespace + ":*"
}
