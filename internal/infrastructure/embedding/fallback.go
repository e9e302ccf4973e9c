package embedding

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the sha256 hex digest of text, the embedding cache key
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DeterministicVector maps the sha256 digest of text to dims floats in [0, 1].
// Each digest byte b becomes b/255; the 32 values are tiled and truncated to dims.
func DeterministicVector(text string, dims int) []float32 {
	if dims <= 0 {
		return nil
	}
	digest := sha256.Sum256([]byte(text))
	vector := make([]float32, dims)
	for i := range vector {
		vector[i] = float32(digest[i%len(digest)]) / 255
	}
	return vector
}
