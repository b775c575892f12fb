package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ArtifactKey builds a cache key for a rendered artifact from the diagram
// source and the output format. The source is hashed so arbitrarily large
// documents produce fixed-size, filesystem-safe keys.
func ArtifactKey(source, format string) string {
	return fmt.Sprintf("artifact:%s:%s", format, Hash([]byte(source)))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
