package storage

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest is the BLAKE2b-256 sum of content. Backends store it next to the
// document to skip rewriting identical content.
func Digest(content string) []byte {
	sum := blake2b.Sum256([]byte(content))
	return sum[:]
}

func DigestHex(content string) string {
	return hex.EncodeToString(Digest(content))
}
