package validate

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// ComputeContentHash returns the hex digest of content under the given
// algorithm (sha256, sha1 or md5). Unknown algorithms fall back to
// sha256 so integrity checks stay deterministic.
func ComputeContentHash(content, algorithm string) string {
	var h hash.Hash
	switch algorithm {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	default:
		h = sha256.New()
	}
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// SupportedHashAlgorithm reports whether the algorithm name is known.
func SupportedHashAlgorithm(algorithm string) bool {
	switch algorithm {
	case "sha256", "sha1", "md5":
		return true
	}
	return false
}
