package recall

import (
	"context"
	"encoding/json"
	"os"

	"samsara/internal/logging"
)

// sidecarEntry is the legacy JSON sidecar record shape.
type sidecarEntry struct {
	SourceType string         `json:"sourceType"`
	SourceID   string         `json:"sourceId"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata"`
}

// MigrationResult reports how a sidecar migration went.
type MigrationResult struct {
	Migrated int
	Skipped  int
}

// MigrateSidecar inserts every sidecar entry not already present (by
// sourceID) into the store, then renames the sidecar file with a .bak
// suffix. Duplicates are skipped, never overwritten. Malformed JSON is
// logged and treated as zero migrated, leaving the sidecar file in place.
func (s *Store) MigrateSidecar(ctx context.Context, path string) (MigrationResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return MigrationResult{}, nil
	}
	if err != nil {
		return MigrationResult{}, err
	}

	var entries []sidecarEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Get(logging.CategoryStore).Error("malformed sidecar JSON at %s: %v", path, err)
		return MigrationResult{}, nil
	}

	existing := make(map[string]bool)
	rows, err := s.vectors.GetAll(ctx)
	if err != nil {
		return MigrationResult{}, err
	}
	for _, row := range rows {
		existing[row.SourceID] = true
	}

	var result MigrationResult
	for _, e := range entries {
		if existing[e.SourceID] {
			result.Skipped++
			continue
		}
		if _, err := s.Upsert(ctx, e.SourceType, e.SourceID, e.Text, e.Metadata); err != nil {
			return result, err
		}
		existing[e.SourceID] = true
		result.Migrated++
	}

	if err := os.Rename(path, path+".bak"); err != nil {
		return result, err
	}
	return result, nil
}
