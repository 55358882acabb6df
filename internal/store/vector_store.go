package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"samsara/internal/collab"
	"samsara/internal/logging"
	"samsara/pkg/recall"
)

// VectorStore adapts Store's embedding_entries table to collab.VectorStore.
// It is the brute-force cosine path required unconditionally by the spec;
// the sqlite_vec build tag adds an ANN fast path on top of the same table
// (see vec_index.go), never replacing it.
type VectorStore struct {
	s *Store
}

// Vectors returns the collab.VectorStore view of s.
func (s *Store) Vectors() *VectorStore { return &VectorStore{s: s} }

// Upsert stores or replaces the row for id (last-writer-wins on a repeat
// SourceID within metadata, mirroring the teacher's "INSERT OR REPLACE"
// idiom in local_vector.go).
func (v *VectorStore) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	timer := logging.StartTimer(logging.CategoryStore, "VectorStore.Upsert")
	defer timer.Stop()

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	sourceType, _ := metadata["source_type"].(string)
	sourceID, _ := metadata["source_id"].(string)

	_, err = v.s.db.ExecContext(ctx, `
		INSERT INTO embedding_entries (id, vector, dimensions, source_type, source_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			vector=excluded.vector, dimensions=excluded.dimensions,
			source_type=excluded.source_type, source_id=excluded.source_id,
			metadata=excluded.metadata, created_at=excluded.created_at
	`, id, recall.EncodeVector(vector), len(vector), sourceType, sourceID, string(metaJSON), time.Now().UnixMilli())
	if err != nil {
		logging.Get(logging.CategoryStore).Error("vector upsert failed for %s: %v", id, err)
		return fmt.Errorf("vector upsert failed: %w", err)
	}
	return nil
}

// GetAll returns every row, used by the brute-force cosine scan in
// pkg/recall and by sidecar migration's duplicate check.
func (v *VectorStore) GetAll(ctx context.Context) ([]collab.VectorRow, error) {
	timer := logging.StartTimer(logging.CategoryStore, "VectorStore.GetAll")
	defer timer.Stop()

	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	rows, err := v.s.db.QueryContext(ctx, `
		SELECT id, vector, dimensions, source_type, source_id, metadata, created_at
		FROM embedding_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("vector scan failed: %w", err)
	}
	defer rows.Close()

	var out []collab.VectorRow
	for rows.Next() {
		var row collab.VectorRow
		var blob []byte
		var metaJSON string
		if err := rows.Scan(&row.ID, &blob, &row.Dimensions, &row.SourceType, &row.SourceID, &metaJSON, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("vector row scan failed: %w", err)
		}
		row.Vector = recall.DecodeVector(blob)
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &row.Metadata)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteBySourceID removes every row tagged with sourceID.
func (v *VectorStore) DeleteBySourceID(ctx context.Context, sourceID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	_, err := v.s.db.ExecContext(ctx, `DELETE FROM embedding_entries WHERE source_id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("delete by source_id failed: %w", err)
	}
	return nil
}
