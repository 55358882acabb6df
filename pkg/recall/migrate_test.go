package recall

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"samsara/internal/collab/collabtest"
)

func writeSidecar(t *testing.T, dir string, entries []sidecarEntry) string {
	t.Helper()
	path := filepath.Join(dir, "sidecar.json")
	data, err := json.Marshal(entries)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestMigrateSidecarInsertsAndRenames(t *testing.T) {
	dir := t.TempDir()
	path := writeSidecar(t, dir, []sidecarEntry{
		{SourceType: "session", SourceID: "a", Text: "first entry"},
		{SourceType: "session", SourceID: "b", Text: "second entry"},
	})

	store := NewStore(collabtest.NewVectorStore(), nil)
	result, err := store.MigrateSidecar(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Migrated)
	assert.Equal(t, 0, result.Skipped)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestMigrateSidecarSkipsExistingSourceID(t *testing.T) {
	dir := t.TempDir()
	path := writeSidecar(t, dir, []sidecarEntry{
		{SourceType: "session", SourceID: "a", Text: "first entry"},
	})

	vecStore := collabtest.NewVectorStore()
	store := NewStore(vecStore, nil)
	store.Upsert(context.Background(), "session", "a", "already present", nil)

	result, err := store.MigrateSidecar(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Migrated)
	assert.Equal(t, 1, result.Skipped)
}

func TestMigrateSidecarMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	assert.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store := NewStore(collabtest.NewVectorStore(), nil)
	result, err := store.MigrateSidecar(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Migrated)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "sidecar left in place on malformed JSON")
}

func TestMigrateSidecarMissingFileIsNoop(t *testing.T) {
	store := NewStore(collabtest.NewVectorStore(), nil)
	result, err := store.MigrateSidecar(context.Background(), "/nonexistent/path.json")
	assert.NoError(t, err)
	assert.Equal(t, MigrationResult{}, result)
}
