package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// GenerateKey hashes the given parts into a deterministic dedupe key. The
// mini-app retries webhook posts on flaky connections, so an identical
// path+payload pair must always map to the same key.
func GenerateKey(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		io.WriteString(h, part)
		h.Write([]byte{0}) // separator, so ("ab","c") != ("a","bc")
	}

	return hex.EncodeToString(h.Sum(nil))
}
