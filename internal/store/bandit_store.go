package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"samsara/internal/logging"
	"samsara/pkg/hybrid"
	"samsara/pkg/turiya"
)

// BanditStore persists Turiya's serialized router state and the Hybrid
// weight learner's state, one row per project, as a JSON document per
// §4.6.5 — the same "one schema-versioned blob" shape the teacher uses
// for its reasoning_traces descriptor cache, adapted here to the router's
// own State type instead of freeform traces.
type BanditStore struct {
	s *Store
}

// Bandit returns the persistence view of s.
func (s *Store) Bandit() *BanditStore { return &BanditStore{s: s} }

// SaveRouterState persists router state for project.
func (b *BanditStore) SaveRouterState(ctx context.Context, project string, state turiya.State) error {
	timer := logging.StartTimer(logging.CategoryStore, "BanditStore.SaveRouterState")
	defer timer.Stop()

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal router state: %w", err)
	}
	_, err = b.s.db.ExecContext(ctx, `
		INSERT INTO bandit_state (project, schema, state_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project) DO UPDATE SET schema=excluded.schema, state_json=excluded.state_json, updated_at=excluded.updated_at
	`, project, state.Schema, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to persist router state: %w", err)
	}
	return nil
}

// LoadRouterState returns the persisted router state for project, or
// (zero, false, nil) if none has been saved yet.
func (b *BanditStore) LoadRouterState(ctx context.Context, project string) (turiya.State, bool, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	var data string
	row := b.s.db.QueryRowContext(ctx, `SELECT state_json FROM bandit_state WHERE project = ?`, project)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return turiya.State{}, false, nil
		}
		return turiya.State{}, false, fmt.Errorf("failed to load router state: %w", err)
	}

	var state turiya.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return turiya.State{}, false, fmt.Errorf("failed to unmarshal router state: %w", err)
	}
	return state, true, nil
}

// SaveWeightLearnerState persists the hybrid weight learner's state for
// project.
func (b *BanditStore) SaveWeightLearnerState(ctx context.Context, project string, state hybrid.WeightLearnerState) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal weight learner state: %w", err)
	}
	_, err = b.s.db.ExecContext(ctx, `
		INSERT INTO weight_learner_state (project, state_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project) DO UPDATE SET state_json=excluded.state_json, updated_at=excluded.updated_at
	`, project, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to persist weight learner state: %w", err)
	}
	return nil
}

// LoadWeightLearnerState returns the persisted weight learner state for
// project, or (zero, false, nil) if none has been saved yet.
func (b *BanditStore) LoadWeightLearnerState(ctx context.Context, project string) (hybrid.WeightLearnerState, bool, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	var data string
	row := b.s.db.QueryRowContext(ctx, `SELECT state_json FROM weight_learner_state WHERE project = ?`, project)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return hybrid.WeightLearnerState{}, false, nil
		}
		return hybrid.WeightLearnerState{}, false, fmt.Errorf("failed to load weight learner state: %w", err)
	}

	var state hybrid.WeightLearnerState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return hybrid.WeightLearnerState{}, false, fmt.Errorf("failed to unmarshal weight learner state: %w", err)
	}
	return state, true, nil
}
