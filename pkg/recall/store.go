package recall

import (
	"context"
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"samsara/internal/collab"
	"samsara/internal/embedding"
	"samsara/internal/logging"
)

// EncodeVector little-endian-encodes a []float32 to bytes, matching the
// embedding_entries table's BLOB column.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector reverses EncodeVector. Precision is bounded by float32
// representation; round-trips are exact since no further conversion occurs.
func DecodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(buf[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}

// Entry mirrors the spec's Embedding Entry record.
type Entry struct {
	ID         string
	Vector     []float32
	SourceType string // "session" | "stream"
	SourceID   string
	Text       string
	Dimensions int
	Metadata   map[string]any
	CreatedAt  time.Time
}

// Options parameterizes Recall.
type Options struct {
	Threshold float64 // minimum cosine similarity, default 0
	Limit     int
}

// Store wraps a collab.VectorStore with the Recall Engine's write-replace
// and embed-then-search semantics. Embeddings come from an EmbeddingService
// collaborator; on failure, Store falls back to the deterministic hash
// embedder.
type Store struct {
	vectors  collab.VectorStore
	embedder collab.EmbeddingService
	fallback FallbackEmbedder
}

// NewStore constructs a Store. embedder may be nil, in which case the
// fallback embedder is used for every call.
func NewStore(vectors collab.VectorStore, embedder collab.EmbeddingService) *Store {
	return &Store{vectors: vectors, embedder: embedder}
}

func (s *Store) embed(ctx context.Context, text string) []float32 {
	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, text); err == nil {
			return vec
		}
		logging.Get(logging.CategoryEmbedding).Warn("embedding service failed, using hash fallback")
	}
	vec, _ := s.fallback.Embed(ctx, text)
	return vec
}

// Upsert embeds text and stores it, replacing any prior entry with the same
// sourceID.
func (s *Store) Upsert(ctx context.Context, sourceType, sourceID, text string, metadata map[string]any) (Entry, error) {
	vec := s.embed(ctx, text)
	id := uuid.NewString()

	meta := make(map[string]any, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["source_id"] = sourceID
	meta["source_type"] = sourceType
	meta["text"] = text

	if err := s.vectors.Upsert(ctx, id, vec, meta); err != nil {
		return Entry{}, err
	}

	return Entry{
		ID:         id,
		Vector:     vec,
		SourceType: sourceType,
		SourceID:   sourceID,
		Text:       text,
		Dimensions: len(vec),
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}, nil
}

func rowToEntry(row collab.VectorRow) Entry {
	text, _ := row.Metadata["text"].(string)
	sourceType, _ := row.Metadata["source_type"].(string)
	return Entry{
		ID:         row.ID,
		Vector:     row.Vector,
		SourceType: sourceType,
		SourceID:   row.SourceID,
		Text:       text,
		Dimensions: row.Dimensions,
		Metadata:   row.Metadata,
		CreatedAt:  time.UnixMilli(row.CreatedAt),
	}
}

// Hit is one recall result: the entry plus its cosine similarity to the
// query.
type Hit struct {
	Entry      Entry
	Similarity float64
}

// Recall embeds query, computes cosine similarity against every stored
// entry, filters by threshold, and returns the top-limit hits descending by
// similarity.
func (s *Store) Recall(ctx context.Context, query string, opts Options) ([]Hit, error) {
	queryVec := s.embed(ctx, query)

	rows, err := s.vectors.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(rows))
	for _, row := range rows {
		sim, err := embedding.CosineSimilarity(queryVec, row.Vector)
		if err != nil {
			continue
		}
		if sim < opts.Threshold {
			continue
		}
		hits = append(hits, Hit{Entry: rowToEntry(row), Similarity: sim})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })

	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return hits, nil
}
