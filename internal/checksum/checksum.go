// Package checksum fingerprints written note content for the journal.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLen is the number of hex digits Short keeps.
const ShortLen = 12

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Content returns the digest of a note's serialized content. Empty content,
// as recorded for trash and delete, has no checksum.
func Content(s string) string {
	if s == "" {
		return ""
	}
	return Sum([]byte(s))
}

// Short abbreviates a digest for display.
func Short(sum string) string {
	if len(sum) <= ShortLen {
		return sum
	}
	return sum[:ShortLen]
}
