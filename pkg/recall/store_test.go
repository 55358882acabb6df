package recall

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"samsara/internal/collab/collabtest"
)

func TestEncodeDecodeVectorRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.2, 0.30001, 1.0, -1.0}
	buf := EncodeVector(original)
	decoded := DecodeVector(buf)
	assert.Equal(t, original, decoded)
}

func TestStoreUpsertAndRecall(t *testing.T) {
	vecStore := collabtest.NewVectorStore()
	store := NewStore(vecStore, nil)
	ctx := context.Background()

	_, err := store.Upsert(ctx, "session", "s1", "remember the deployment config", nil)
	assert.NoError(t, err)
	_, err = store.Upsert(ctx, "stream", "s2", "unrelated text about cooking", nil)
	assert.NoError(t, err)

	hits, err := store.Recall(ctx, "remember the deployment config", Options{Limit: 5})
	assert.NoError(t, err)
	assert.NotEmpty(t, hits)
	assert.Equal(t, "s1", hits[0].Entry.SourceID)
}

func TestStoreUpsertDuplicateSourceIDReplaces(t *testing.T) {
	vecStore := collabtest.NewVectorStore()
	store := NewStore(vecStore, nil)
	ctx := context.Background()

	store.Upsert(ctx, "session", "dup", "first version", nil)
	store.Upsert(ctx, "session", "dup", "second version", nil)

	rows, err := vecStore.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStoreRecallThresholdFilters(t *testing.T) {
	vecStore := collabtest.NewVectorStore()
	store := NewStore(vecStore, nil)
	ctx := context.Background()
	store.Upsert(ctx, "session", "s1", "alpha beta gamma", nil)

	hits, err := store.Recall(ctx, "completely different unrelated query text", Options{Threshold: 2.0})
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStoreEmbedderFallbackOnFailure(t *testing.T) {
	vecStore := collabtest.NewVectorStore()
	embedder := &collabtest.Embedder{EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
		return nil, assert.AnError
	}}
	store := NewStore(vecStore, embedder)
	ctx := context.Background()
	entry, err := store.Upsert(ctx, "session", "s1", "test text", nil)
	assert.NoError(t, err)
	assert.Len(t, entry.Vector, FallbackDimensions)
}
