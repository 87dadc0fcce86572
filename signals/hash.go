package signals

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPII one-way digests an identifying string: sha256 over the
// lower-cased, trimmed input, keeping the first 16 hex characters. 64 bits
// is far beyond collision concerns for a personal contact set, and nothing
// about the original string is recoverable.
func HashPII(s string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(sum[:])[:16]
}

// addressDomain returns the portion after the last "@", or "" when the
// address has none. Hashing the empty domain gives every domain-less
// contact the same company hash, which is accepted.
func addressDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
