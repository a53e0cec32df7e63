package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// hashKey builds "prefix:sha256(parts)". Parts are length-prefixed so that
// ("a/b", "c") and ("a", "b/c") never produce the same key.
func hashKey(prefix string, parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return prefix + ":" + Hash([]byte(b.String()))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint returns a fast non-cryptographic digest of data, used to skip
// re-parsing bodies that were already seen in a run.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
