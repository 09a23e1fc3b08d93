// Package checksum fingerprints document content for index reconciliation.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString returns the hex-encoded SHA-256 digest of extracted document
// content. Extraction keeps content as text, so most callers hold a string.
func SumString(s string) string {
	return Sum([]byte(s))
}
