// Package recall implements the vector-index memory layer: a deterministic
// fallback embedder, a VectorStore-backed recall operation with cosine
// similarity search, and the legacy JSON-sidecar migration contract.
package recall

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// FallbackDimensions is the fixed dimensionality of hash-based fallback
// embeddings.
const FallbackDimensions = 384

// FallbackEmbedder implements collab.EmbeddingService with a deterministic
// hash-based unit vector: identical text always yields identical vectors,
// and distinct text yields distinct vectors with overwhelming probability.
// Used when the real EmbeddingService collaborator is unavailable or fails.
type FallbackEmbedder struct{}

// Embed never returns an error; it is the fallback of last resort.
func (FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return HashEmbed(text), nil
}

// HashEmbed derives a unit-norm 384-dim vector from text by repeatedly
// hashing a running seed with SHA-256 and spreading the digest bytes across
// dimensions as signed, normalized floats.
func HashEmbed(text string) []float32 {
	vec := make([]float32, FallbackDimensions)
	seed := []byte(text)
	digest := sha256.Sum256(seed)

	for i := 0; i < FallbackDimensions; i++ {
		if i > 0 && i%32 == 0 {
			digest = sha256.Sum256(digest[:])
		}
		byteIdx := (i % 32)
		// combine two bytes per dimension for more spread than one byte alone
		hi := digest[byteIdx]
		lo := digest[(byteIdx+1)%32]
		raw := int16(binary.BigEndian.Uint16([]byte{hi, lo}))
		vec[i] = float32(raw) / float32(math.MaxInt16)
	}

	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
}
